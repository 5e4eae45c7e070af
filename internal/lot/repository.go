package lot

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

// Repository reads the append-only lot store. Lots are inserted by purchase confirmation only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*model.PurchaseLot, error)
	FindAll(ctx context.Context, filters *dto.LotFilters) ([]model.PurchaseLot, error)
	DistinctVariants(ctx context.Context, sessionID string) ([]string, error)
	// FindActiveSessionsWithVariant lists sessions that are not CLOSED and hold lots of the variant.
	FindActiveSessionsWithVariant(ctx context.Context, variantID string) ([]string, error)
	FindLastByVariant(ctx context.Context, variantID string) (*model.PurchaseLot, error)

	// SetWeight records the net weight once; false when the lot was already weighed.
	SetWeight(ctx context.Context, id string, weight decimal.Decimal, at time.Time) (bool, error)
}
