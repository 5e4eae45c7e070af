package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLot(t *testing.T, env *testutil.TestEnv, status model.SessionStatus, dateKey string, u unit.Unit) *model.PurchaseLot {
	s := testutil.SeedSession(t, env.DB, dateKey, status)
	return testutil.SeedLot(t, env.DB, model.PurchaseLot{
		SessionID: s.ID, VariantID: "tomato", SupplierID: "sup-1",
		Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("6000"), PurchaseUnit: u,
	})
}

func setup(t *testing.T) *testutil.TestEnv {
	env := testutil.NewTestEnv(t)
	testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true)
	testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Box})
	return env
}

func TestWeigh_IsWriteOnce(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	l := seedLot(t, env, model.SessionOpen, "2026-03-10", unit.Box)

	res, err := env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: l.ID, NetWeight: testutil.Dec("18.5"), UserID: "ana"})
	require.NoError(t, err)
	require.NotNil(t, res.Lot.MeasuredWeight)
	assert.True(t, res.Lot.MeasuredWeight.Equal(testutil.Dec("18.5")))
	assert.NotNil(t, res.Lot.WeighedAt)
	assert.Equal(t, model.PriceReady, res.DailyPrice.Status)

	_, err = env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: l.ID, NetWeight: testutil.Dec("19"), UserID: "ana"})
	assert.True(t, apperror.IsConflict(err))
}

func TestWeigh_Rejections(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: "nope", NetWeight: testutil.Dec("5")})
	assert.True(t, apperror.IsNotFound(err))

	kg := seedLot(t, env, model.SessionOpen, "2026-03-10", unit.Weight)
	_, err = env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: kg.ID, NetWeight: testutil.Dec("5")})
	assert.True(t, apperror.IsValidation(err), "weight lots are already measured")

	_, err = env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: kg.ID, NetWeight: testutil.Dec("0")})
	assert.True(t, apperror.IsValidation(err))

	frozen := seedLot(t, env, model.SessionClosed, "2026-03-01", unit.Box)
	_, err = env.UseCases.Lot.Weigh(ctx, &dto.WeighLotInput{LotID: frozen.ID, NetWeight: testutil.Dec("5")})
	assert.True(t, apperror.IsConflict(err))
}

func TestList_FiltersBySessionAndVariant(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	a := seedLot(t, env, model.SessionOpen, "2026-03-10", unit.Box)
	seedLot(t, env, model.SessionClosed, "2026-03-01", unit.Box)

	all, err := env.UseCases.Lot.List(ctx, &dto.LotFilters{VariantID: "tomato"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := env.UseCases.Lot.List(ctx, &dto.LotFilters{SessionID: a.SessionID})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, a.ID, one[0].ID)
}
