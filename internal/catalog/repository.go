package catalog

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
)

type Repository interface {
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	GetVariantsByIDs(ctx context.Context, ids []string) ([]model.ProductVariant, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	UpdateUnitConfig(ctx context.Context, variantID string, cfg unit.Config, at time.Time) (bool, error)
}
