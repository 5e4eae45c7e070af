package usecase_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUnitConfig_RepricesActiveSessions(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()
	open := testutil.SeedSession(t, env.DB, "2026-03-10", model.SessionOpen)
	closed := testutil.SeedSession(t, env.DB, "2026-03-09", model.SessionClosed)
	sup := testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true)
	v := testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Box})

	for _, s := range []*model.PurchaseSession{open, closed} {
		testutil.SeedLot(t, env.DB, model.PurchaseLot{
			SessionID: s.ID, VariantID: v.ID, SupplierID: sup.ID,
			Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("9000"), PurchaseUnit: unit.Box,
		})
	}

	res, err := env.UseCases.Catalog.UpdateUnitConfig(ctx, &dto.UpdateUnitConfigInput{
		VariantID:        v.ID,
		SaleUnit:         "kg",
		PurchaseUnit:     "box",
		ConversionFactor: testutil.DecPtr("18"),
	})
	require.NoError(t, err)

	assert.Equal(t, unit.Weight, res.Variant.SaleUnit)
	require.NotNil(t, res.Variant.ConversionFactor)
	assert.True(t, res.Variant.ConversionFactor.Equal(testutil.Dec("18")))
	require.Len(t, res.Recomputed, 1)
	assert.Equal(t, open.ID, res.Recomputed[0].SessionID)
	assert.Equal(t, model.PriceReady, res.Recomputed[0].Status)
	// 9000 / 18 = 500 -> 675 -> 700
	assert.True(t, res.Recomputed[0].SalePrice.Equal(testutil.Dec("700")))
}

func TestUpdateUnitConfig_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()
	v := testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight})

	_, err := env.UseCases.Catalog.UpdateUnitConfig(ctx, &dto.UpdateUnitConfigInput{VariantID: v.ID, SaleUnit: "BOX"})
	assert.True(t, apperror.IsValidation(err), "BOX is not a sale unit")

	_, err = env.UseCases.Catalog.UpdateUnitConfig(ctx, &dto.UpdateUnitConfigInput{
		VariantID: v.ID, SaleUnit: "WEIGHT", ConversionFactor: testutil.DecPtr("10"),
	})
	assert.True(t, apperror.IsValidation(err), "factor needs a purchase unit")

	_, err = env.UseCases.Catalog.UpdateUnitConfig(ctx, &dto.UpdateUnitConfigInput{VariantID: "ghost", SaleUnit: "WEIGHT"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetSupplierAndVariant(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()
	testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true)
	testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight})

	s, err := env.UseCases.Catalog.GetSupplier(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, "Don Pepe", s.Nickname)

	v, err := env.UseCases.Catalog.GetVariant(ctx, "tomato")
	require.NoError(t, err)
	assert.Equal(t, "Tomato", v.VariantName)

	_, err = env.UseCases.Catalog.GetSupplier(ctx, "nobody")
	assert.True(t, apperror.IsNotFound(err))
}
