// Package cli implements pricingctl, the operator command line for the pricing service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fekuna/omnipos-pricing-service/config"
	"github.com/fekuna/omnipos-pricing-service/internal/app"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// Env is what a command needs to act on the store.
type Env struct {
	DB       *sqlx.DB
	UseCases *app.UseCases
	Close    func()
}

// Opener builds an Env. Tests swap it for one backed by a temporary database.
type Opener func(ctx context.Context) (*Env, error)

type RootOptions struct {
	Format string // "json" | "text"
	Open   Opener
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = DefaultOpener
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:   "pricingctl",
		Short: "Operate purchase sessions and daily prices",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRecomputeCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// DefaultOpener connects with the service configuration. Events are not published.
func DefaultOpener(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Server.Timezone, err)
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          "console",
		Level:             "warn",
		DisableStacktrace: true,
	})

	ucs := app.NewUseCases(app.Infra{DB: db, Location: loc}, log)
	return &Env{
		DB:       db,
		UseCases: ucs,
		Close: func() {
			_ = log.Sync()
			_ = db.Close()
		},
	}, nil
}

func (o *RootOptions) env(ctx context.Context) (*Env, error) {
	e, err := o.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if e.Close == nil {
		e.Close = func() {}
	}
	return e, nil
}

// print writes v as indented JSON, or calls text for the text format.
func (o *RootOptions) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
