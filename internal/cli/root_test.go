package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/cli"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, env *testutil.TestEnv, args ...string) (string, error) {
	t.Helper()
	open := func(ctx context.Context) (*cli.Env, error) {
		return &cli.Env{DB: env.DB, UseCases: env.UseCases}, nil
	}
	cmd := cli.NewRootCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand(nil)
	assert.Equal(t, "pricingctl", cmd.Use)

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "recompute", "settings", "session", "export"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	f := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "text", f.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, err := run(t, env, "settings", "show", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSettingsCommands(t *testing.T) {
	env := testutil.NewTestEnv(t)

	out, err := run(t, env, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "margin_pct\t0.35")
	assert.Contains(t, out, "round_step\t50")

	out, err = run(t, env, "settings", "margin", "40", "--format", "json")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "0.4", res["margin_pct"])

	_, err = run(t, env, "settings", "round-step", "0")
	assert.Error(t, err)

	_, err = run(t, env, "settings", "margin", "abc")
	assert.Error(t, err)
}

func TestSessionAndExportCommands(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SeedVariant(t, env.DB, "lettuce", "Lettuce", unit.Config{SaleUnit: unit.Piece, PurchaseUnit: unit.Piece})

	out, err := run(t, env, "session", "create", "--date", "2026-05-01")
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	sessionID := fields[0]
	assert.Equal(t, "2026-05-01", fields[1])
	assert.Equal(t, string(model.SessionPlanning), fields[2])

	out, err = run(t, env, "session", "open", sessionID)
	require.NoError(t, err)
	assert.Contains(t, out, string(model.SessionOpen))

	testutil.SeedLot(t, env.DB, model.PurchaseLot{
		SessionID: sessionID, VariantID: "lettuce", Quantity: testutil.Dec("1"),
		UnitCost: testutil.Dec("700"), PurchaseUnit: unit.Piece,
	})

	out, err = run(t, env, "recompute", "--session", sessionID)
	require.NoError(t, err)
	assert.Contains(t, out, "lettuce\tREADY\t950")

	_, err = run(t, env, "recompute")
	assert.Error(t, err, "--session is required")

	out, err = run(t, env, "session", "close", sessionID)
	require.NoError(t, err)
	assert.Contains(t, out, string(model.SessionClosed))

	path := filepath.Join(t.TempDir(), "board.xlsx")
	out, err = run(t, env, "export", "--session", sessionID, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
