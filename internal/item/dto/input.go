package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type AddItemInput struct {
	SessionID             string           `json:"-"`
	VariantID             string           `json:"variant_id" binding:"required"`
	Origin                model.ItemOrigin `json:"origin"`
	PlannedQuantity       *decimal.Decimal `json:"planned_quantity"`
	ReferencePrice        *decimal.Decimal `json:"reference_price"`
	ReferencePurchaseUnit string           `json:"reference_purchase_unit"`
	UserID                string           `json:"-"`
}

type UpdatePlanInput struct {
	SessionID             string           `json:"-"`
	ItemID                string           `json:"-"`
	PlannedQuantity       *decimal.Decimal `json:"planned_quantity"`
	ReferencePrice        *decimal.Decimal `json:"reference_price"`
	ReferencePurchaseUnit string           `json:"reference_purchase_unit"`
}

type ReserveInput struct {
	SessionID string `json:"-"`
	ItemID    string `json:"-"`
	Minutes   int    `json:"minutes"`
	UserID    string `json:"-"`
}

type ConfirmInput struct {
	SessionID  string          `json:"-"`
	ItemID     string          `json:"-"`
	SupplierID string          `json:"supplier_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UserID     string          `json:"-"`
}

type ConfirmResult struct {
	Item       *model.SessionItem  `json:"item"`
	Lots       []model.PurchaseLot `json:"lots"`
	DailyPrice *model.DailyPrice   `json:"daily_price"`
}
