package model

import (
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingAuto   PricingMode = "AUTO"
	PricingManual PricingMode = "MANUAL"
)

type PriceStatus string

const (
	PricePending PriceStatus = "PENDING"
	PricePartial PriceStatus = "PARTIAL"
	PriceReady   PriceStatus = "READY"
)

type Movement string

const (
	MovementNew  Movement = "NEW"
	MovementUp   Movement = "UP"
	MovementDown Movement = "DOWN"
	MovementSame Movement = "SAME"
)

// DailyPrice is the derived price of a variant within a session. Status is READY iff SalePrice is set.
type DailyPrice struct {
	BaseModel
	SessionID      string           `db:"session_id" json:"session_id"`
	VariantID      string           `db:"variant_id" json:"variant_id"`
	SaleUnit       unit.Unit        `db:"sale_unit" json:"sale_unit"`
	NormalizedCost *decimal.Decimal `db:"normalized_cost" json:"normalized_cost"`
	MarginPct      decimal.Decimal  `db:"margin_pct" json:"margin_pct"`
	SalePrice      *decimal.Decimal `db:"sale_price" json:"sale_price"`
	PricingMode    PricingMode      `db:"pricing_mode" json:"pricing_mode"`
	ManualPrice    *decimal.Decimal `db:"manual_price" json:"manual_price"`
	ManualSetBy    *string          `db:"manual_set_by" json:"manual_set_by"`
	ManualSetAt    *time.Time       `db:"manual_set_at" json:"manual_set_at"`
	ManualNote     string           `db:"manual_note" json:"manual_note"`
	Status         PriceStatus      `db:"status" json:"status"`
	AnchorLotID    *string          `db:"anchor_lot_id" json:"anchor_lot_id"`
}

// PreviousPrice is the READY price of a variant in an earlier session.
type PreviousPrice struct {
	DateKey   string          `db:"date_key" json:"date_key"`
	SalePrice decimal.Decimal `db:"sale_price" json:"sale_price"`
}

type DailyPriceView struct {
	DailyPrice
	VariantName     string           `json:"variant_name"`
	Movement        *Movement        `json:"movement"`
	Delta           *decimal.Decimal `json:"delta"`
	PreviousPrice   *decimal.Decimal `json:"previous_price"`
	PreviousDateKey *string          `json:"previous_date_key"`
}

type PendingPrice struct {
	DailyPrice
	VariantName     string           `json:"variant_name"`
	LastManualPrice *decimal.Decimal `json:"last_manual_price"`
}

// PricingConfig is the settings snapshot taken at the start of a recompute.
type PricingConfig struct {
	MarginPct decimal.Decimal `json:"margin_pct"`
	RoundStep decimal.Decimal `json:"round_step"`
}
