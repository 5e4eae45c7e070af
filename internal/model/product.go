package model

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/shopspring/decimal"
)

// ProductVariant is the read side of the catalog plus its unit configuration.
type ProductVariant struct {
	ID               string           `db:"id" json:"id"`
	ProductID        string           `db:"product_id" json:"product_id"`
	VariantName      string           `db:"variant_name" json:"variant_name"`
	SaleUnit         unit.Unit        `db:"sale_unit" json:"sale_unit"`
	PurchaseUnit     unit.Unit        `db:"purchase_unit" json:"purchase_unit"`
	ConversionFactor *decimal.Decimal `db:"conversion_factor" json:"conversion_factor"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

func (v *ProductVariant) UnitConfig() unit.Config {
	return unit.Config{
		SaleUnit:         v.SaleUnit,
		PurchaseUnit:     v.PurchaseUnit,
		ConversionFactor: v.ConversionFactor,
	}
}

type Supplier struct {
	ID       string `db:"id" json:"id"`
	Nickname string `db:"nickname" json:"nickname"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

type AppSetting struct {
	Key         string          `db:"setting_key" json:"key"`
	ValueNumber decimal.Decimal `db:"value_number" json:"value_number"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
