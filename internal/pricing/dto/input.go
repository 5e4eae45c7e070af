package dto

import "github.com/shopspring/decimal"

type SetManualInput struct {
	SessionID string          `json:"-"`
	VariantID string          `json:"-"`
	Price     decimal.Decimal `json:"price"`
	Note      string          `json:"note"`
	UserID    string          `json:"-"`
}
