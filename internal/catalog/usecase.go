package catalog

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type UseCase interface {
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	// UpdateUnitConfig saves the configuration and reprices the variant wherever it was bought
	// in a session that is not closed yet.
	UpdateUnitConfig(ctx context.Context, input *dto.UpdateUnitConfigInput) (*dto.UnitConfigResult, error)
}

// VariantRecomputer reprices one (session, variant) pair.
type VariantRecomputer interface {
	Recompute(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
}
