package model

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/shopspring/decimal"
)

type ItemOrigin string

const (
	OriginPlanned   ItemOrigin = "PLANNED"
	OriginUnplanned ItemOrigin = "UNPLANNED"
)

type ItemState string

const (
	ItemPending   ItemState = "PENDING"
	ItemReserved  ItemState = "RESERVED"
	ItemPurchased ItemState = "PURCHASED"
	ItemCancelled ItemState = "CANCELLED"
)

func (s ItemState) Terminal() bool {
	return s == ItemPurchased || s == ItemCancelled
}

// SessionItem is a planned or ad-hoc purchase line, unique per (session, variant).
type SessionItem struct {
	BaseModel
	SessionID             string           `db:"session_id" json:"session_id"`
	VariantID             string           `db:"variant_id" json:"variant_id"`
	Origin                ItemOrigin       `db:"origin" json:"origin"`
	PlannedQuantity       *decimal.Decimal `db:"planned_quantity" json:"planned_quantity"`
	ReferencePrice        *decimal.Decimal `db:"reference_price" json:"reference_price"`
	ReferencePurchaseUnit unit.Unit        `db:"reference_purchase_unit" json:"reference_purchase_unit"`
	State                 ItemState        `db:"state" json:"state"`
	ReservedBy            *string          `db:"reserved_by" json:"reserved_by"`
	ReservationExpiresAt  *time.Time       `db:"reservation_expires_at" json:"reservation_expires_at"`
}

// ReservationExpired reports a RESERVED item whose hold has lapsed at now.
func (i *SessionItem) ReservationExpired(now time.Time) bool {
	return i.State == ItemReserved && i.ReservationExpiresAt != nil && !i.ReservationExpiresAt.After(now)
}

// Effective returns the item as readers should see it: lapsed reservations read as PENDING.
func (i SessionItem) Effective(now time.Time) SessionItem {
	if i.ReservationExpired(now) {
		i.State = ItemPending
		i.ReservedBy = nil
		i.ReservationExpiresAt = nil
	}
	return i
}

// PurchaseSummary aggregates the lots bought for one variant within a session.
type PurchaseSummary struct {
	LotCount       int             `json:"lot_count"`
	Quantity       decimal.Decimal `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
	LastPurchaseAt *time.Time      `json:"last_purchase_at"`
}

type SessionItemView struct {
	SessionItem
	VariantName string           `json:"variant_name"`
	SaleUnit    unit.Unit        `json:"sale_unit"`
	Purchased   *PurchaseSummary `json:"purchased"`
}
