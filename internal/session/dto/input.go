package dto

import "github.com/shopspring/decimal"

type CreateSessionInput struct {
	DateKey       string           `json:"date_key"`
	PlannedBudget *decimal.Decimal `json:"planned_budget"`
	UserID        string           `json:"-"`
}

type UpdateDateInput struct {
	DateKey string `json:"date_key" binding:"required"`
}

type UpdateBudgetInput struct {
	SessionID     string           `json:"-"`
	PlannedBudget *decimal.Decimal `json:"planned_budget"`
}
