package setting

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	KeyMarginPct = "MARGIN_PCT"
	KeyRoundStep = "ROUND_STEP"
)

var (
	DefaultMarginPct = decimal.RequireFromString("0.35")
	DefaultRoundStep = decimal.NewFromInt(50)
)

type Repository interface {
	GetNumber(ctx context.Context, key string) (*decimal.Decimal, error)
	SetNumber(ctx context.Context, key string, value decimal.Decimal, at time.Time) error
	FindAll(ctx context.Context) ([]model.AppSetting, error)
}
