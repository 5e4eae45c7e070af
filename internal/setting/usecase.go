package setting

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/setting/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	// Snapshot reads margin and round step fresh from the store.
	Snapshot(ctx context.Context) (*model.PricingConfig, error)
	SetMargin(ctx context.Context, value decimal.Decimal) (*dto.PricingSettingsResult, error)
	SetRoundStep(ctx context.Context, value decimal.Decimal) (*dto.PricingSettingsResult, error)
}

// SessionRecomputer reprices every variant of a session.
type SessionRecomputer interface {
	RecomputeAll(ctx context.Context, sessionID string) ([]model.DailyPrice, error)
}
