package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type UpdateUnitConfigInput struct {
	VariantID        string           `json:"-"`
	SaleUnit         string           `json:"sale_unit" binding:"required"`
	PurchaseUnit     string           `json:"purchase_unit"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
}

type UnitConfigResult struct {
	Variant    *model.ProductVariant `json:"variant"`
	Recomputed []model.DailyPrice    `json:"recomputed"`
}
