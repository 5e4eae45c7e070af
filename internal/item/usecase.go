package item

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type UseCase interface {
	AddItem(ctx context.Context, input *dto.AddItemInput) (*model.SessionItem, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) error
	UpdatePlan(ctx context.Context, input *dto.UpdatePlanInput) (*model.SessionItem, error)
	ListItems(ctx context.Context, sessionID string) ([]model.SessionItemView, error)

	Reserve(ctx context.Context, input *dto.ReserveInput) (*model.SessionItem, error)
	Release(ctx context.Context, sessionID, itemID, actor string) (*model.SessionItem, error)
	Cancel(ctx context.Context, sessionID, itemID, actor string) (*model.SessionItem, error)
	Confirm(ctx context.Context, input *dto.ConfirmInput) (*dto.ConfirmResult, error)
}

// VariantRecomputer prices a variant after its lots were committed.
type VariantRecomputer interface {
	RecomputePurchased(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error)
}
