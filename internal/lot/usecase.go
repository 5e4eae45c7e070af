package lot

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type UseCase interface {
	List(ctx context.Context, filters *dto.LotFilters) ([]model.PurchaseLot, error)
	Get(ctx context.Context, id string) (*model.PurchaseLot, error)
	Weigh(ctx context.Context, input *dto.WeighLotInput) (*dto.WeighResult, error)
}

type VariantRecomputer interface {
	Recompute(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
}
