package unit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNormalize_SameUnitReturnsCost(t *testing.T) {
	for _, u := range []Unit{Weight, Bunch, Piece, Tray, Bag} {
		cost, ok := Normalize(Purchase{Unit: u, UnitCost: dec("1234.56")}, Config{SaleUnit: u})
		require.True(t, ok, u)
		assert.True(t, cost.Equal(dec("1234.56")), u)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		purchase Purchase
		cfg      Config
		want     string
		ok       bool
	}{
		{
			name:     "box to weight prefers measured weight",
			purchase: Purchase{Unit: Box, UnitCost: dec("12000"), MeasuredWeight: decPtr("20")},
			cfg:      Config{SaleUnit: Weight, PurchaseUnit: Box, ConversionFactor: decPtr("18")},
			want:     "600",
			ok:       true,
		},
		{
			name:     "box to weight falls back to factor",
			purchase: Purchase{Unit: Box, UnitCost: dec("12000")},
			cfg:      Config{SaleUnit: Weight, PurchaseUnit: Box, ConversionFactor: decPtr("20")},
			want:     "600",
			ok:       true,
		},
		{
			name:     "bag to weight without weight or factor",
			purchase: Purchase{Unit: Bag, UnitCost: dec("5000")},
			cfg:      Config{SaleUnit: Weight, PurchaseUnit: Bag},
			ok:       false,
		},
		{
			name:     "bunch to weight by factor",
			purchase: Purchase{Unit: Bunch, UnitCost: dec("300")},
			cfg:      Config{SaleUnit: Weight, PurchaseUnit: Bunch, ConversionFactor: decPtr("0.5")},
			want:     "600",
			ok:       true,
		},
		{
			name:     "bale to bunch by factor",
			purchase: Purchase{Unit: Bale, UnitCost: dec("2400")},
			cfg:      Config{SaleUnit: Bunch, PurchaseUnit: Bale, ConversionFactor: decPtr("12")},
			want:     "200",
			ok:       true,
		},
		{
			name:     "bale to bunch without factor",
			purchase: Purchase{Unit: Bale, UnitCost: dec("2400")},
			cfg:      Config{SaleUnit: Bunch, PurchaseUnit: Bale},
			ok:       false,
		},
		{
			name:     "box to piece by factor",
			purchase: Purchase{Unit: Box, UnitCost: dec("3000")},
			cfg:      Config{SaleUnit: Piece, PurchaseUnit: Box, ConversionFactor: decPtr("30")},
			want:     "100",
			ok:       true,
		},
		{
			name:     "bag to piece by factor",
			purchase: Purchase{Unit: Bag, UnitCost: dec("1000")},
			cfg:      Config{SaleUnit: Piece, PurchaseUnit: Bag, ConversionFactor: decPtr("8")},
			want:     "125",
			ok:       true,
		},
		{
			name:     "box to tray by factor",
			purchase: Purchase{Unit: Box, UnitCost: dec("4000")},
			cfg:      Config{SaleUnit: Tray, PurchaseUnit: Box, ConversionFactor: decPtr("10")},
			want:     "400",
			ok:       true,
		},
		{
			name:     "bale to bag is not convertible",
			purchase: Purchase{Unit: Bale, UnitCost: dec("4000")},
			cfg:      Config{SaleUnit: Bag, PurchaseUnit: Bale, ConversionFactor: decPtr("10")},
			ok:       false,
		},
		{
			name:     "weight to piece is not convertible",
			purchase: Purchase{Unit: Weight, UnitCost: dec("900")},
			cfg:      Config{SaleUnit: Piece, PurchaseUnit: Weight, ConversionFactor: decPtr("4")},
			ok:       false,
		},
		{
			name:     "missing lot unit uses variant purchase unit",
			purchase: Purchase{UnitCost: dec("3000")},
			cfg:      Config{SaleUnit: Piece, PurchaseUnit: Box, ConversionFactor: decPtr("30")},
			want:     "100",
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.purchase, tt.cfg)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestRoundUp(t *testing.T) {
	assert.True(t, RoundUp(dec("1025"), dec("50")).Equal(dec("1050")))
	assert.True(t, RoundUp(dec("1000"), dec("50")).Equal(dec("1000")))
	assert.True(t, RoundUp(dec("1000.01"), dec("50")).Equal(dec("1050")))
	assert.True(t, RoundUp(dec("1"), dec("10")).Equal(dec("10")))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{SaleUnit: Weight}.Validate())
	assert.NoError(t, Config{SaleUnit: Weight, PurchaseUnit: Box, ConversionFactor: decPtr("18")}.Validate())

	err := Config{SaleUnit: Weight, ConversionFactor: decPtr("18")}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purchase_unit")

	assert.Error(t, Config{SaleUnit: Box}.Validate())
	assert.Error(t, Config{SaleUnit: Weight, PurchaseUnit: Box, ConversionFactor: decPtr("0")}.Validate())
}

func TestParseAndDiscrete(t *testing.T) {
	u, ok := Parse(" box ")
	require.True(t, ok)
	assert.Equal(t, Box, u)

	u, ok = Parse("kg")
	require.True(t, ok)
	assert.Equal(t, Weight, u)

	_, ok = Parse("pallet")
	assert.False(t, ok)

	assert.True(t, IsDiscrete(Box))
	assert.True(t, IsDiscrete(Bunch))
	assert.False(t, IsDiscrete(Weight))
	assert.False(t, IsDiscrete(Tray))
}
