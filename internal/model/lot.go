package model

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/shopspring/decimal"
)

// PurchaseLot records one real purchase. Only the weighing fields are ever written after insert.
type PurchaseLot struct {
	ID             string           `db:"id" json:"id"`
	SessionID      string           `db:"session_id" json:"session_id"`
	VariantID      string           `db:"variant_id" json:"variant_id"`
	SupplierID     string           `db:"supplier_id" json:"supplier_id"`
	Quantity       decimal.Decimal  `db:"quantity" json:"quantity"`
	UnitCost       decimal.Decimal  `db:"unit_cost" json:"unit_cost"`
	PurchaseUnit   unit.Unit        `db:"purchase_unit" json:"purchase_unit"`
	MeasuredWeight *decimal.Decimal `db:"measured_weight" json:"measured_weight"`
	WeighedAt      *time.Time       `db:"weighed_at" json:"weighed_at"`
	PurchasedBy    string           `db:"purchased_by" json:"purchased_by"`
	PurchasedAt    time.Time        `db:"purchased_at" json:"purchased_at"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// Timestamp is the weighing time when present, else the purchase time.
func (l *PurchaseLot) Timestamp() time.Time {
	if l.WeighedAt != nil {
		return *l.WeighedAt
	}
	return l.PurchasedAt
}

func (l *PurchaseLot) Purchase() unit.Purchase {
	return unit.Purchase{
		Unit:           l.PurchaseUnit,
		UnitCost:       l.UnitCost,
		MeasuredWeight: l.MeasuredWeight,
	}
}

// Total is quantity times unit cost.
func (l *PurchaseLot) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}
