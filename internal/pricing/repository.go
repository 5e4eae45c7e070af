package pricing

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetBySessionVariant(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
	FindBySession(ctx context.Context, filters *dto.DailyPriceFilters) ([]model.DailyPrice, error)

	// UpsertAuto writes an automatic computation. It reports false, without writing, when the
	// row holds an active manual override.
	UpsertAuto(ctx context.Context, dp *model.DailyPrice) (bool, error)
	// ReassertManual sets sale_price back to manual_price on a MANUAL row.
	ReassertManual(ctx context.Context, sessionID, variantID string, margin decimal.Decimal, at time.Time) (bool, error)
	UpsertManual(ctx context.Context, dp *model.DailyPrice) error
	ClearManual(ctx context.Context, sessionID, variantID string, at time.Time) (bool, error)

	// FindPreviousReady returns the READY price of the variant in the latest session whose
	// date key is strictly before beforeDateKey.
	FindPreviousReady(ctx context.Context, variantID, beforeDateKey string) (*model.PreviousPrice, error)
	FindLastManualPrice(ctx context.Context, variantID, excludeSessionID string) (*decimal.Decimal, error)
}
