package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionPlanning SessionStatus = "PLANNING"
	SessionOpen     SessionStatus = "OPEN"
	SessionClosed   SessionStatus = "CLOSED"
)

// PurchaseSession is one business day of purchasing. DateKey is YYYY-MM-DD.
type PurchaseSession struct {
	BaseModel
	DateKey       string           `db:"date_key" json:"date_key"`
	Status        SessionStatus    `db:"status" json:"status"`
	PlannedBudget *decimal.Decimal `db:"planned_budget" json:"planned_budget"`
	CreatedBy     string           `db:"created_by" json:"created_by"`
	OpenedAt      *time.Time       `db:"opened_at" json:"opened_at"`
	ClosedAt      *time.Time       `db:"closed_at" json:"closed_at"`
}
