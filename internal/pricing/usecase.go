package pricing

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
)

type UseCase interface {
	// Recompute derives the (session, variant) price from persisted lots. Safe to retry.
	Recompute(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
	// RecomputePurchased is Recompute for lots that were just committed; it also runs when the
	// session closed after the purchase.
	RecomputePurchased(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
	RecomputeAll(ctx context.Context, sessionID string) ([]model.DailyPrice, error)
	SetManual(ctx context.Context, input *dto.SetManualInput) (*model.DailyPrice, error)
	ClearManual(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)

	GetDailyPrice(ctx context.Context, sessionID, variantID string) (*model.DailyPriceView, error)
	ListDailyPrices(ctx context.Context, filters *dto.DailyPriceFilters) ([]model.DailyPriceView, error)
	ListPending(ctx context.Context, sessionID string) ([]model.PendingPrice, error)
	ExportBoard(ctx context.Context, sessionID string) ([]byte, error)
}
