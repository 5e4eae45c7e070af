package dto

import "github.com/shopspring/decimal"

type UpdateMarginInput struct {
	Value decimal.Decimal `json:"value"`
}

type UpdateRoundStepInput struct {
	Value decimal.Decimal `json:"value"`
}

type PricingSettingsResult struct {
	MarginPct           decimal.Decimal `json:"margin_pct"`
	RoundStep           decimal.Decimal `json:"round_step"`
	RecomputedSessionID *string         `json:"recomputed_session_id,omitempty"`
	RecomputedVariants  int             `json:"recomputed_variants"`
}
