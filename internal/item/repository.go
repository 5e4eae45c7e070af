package item

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

// Repository persists session items. State changes are conditional updates that report
// false when the row was not in an allowed state; none of them read first.
type Repository interface {
	Create(ctx context.Context, it *model.SessionItem) error
	GetByID(ctx context.Context, sessionID, itemID string) (*model.SessionItem, error)
	GetBySessionVariant(ctx context.Context, sessionID, variantID string) (*model.SessionItem, error)
	FindBySession(ctx context.Context, sessionID string) ([]model.SessionItem, error)

	DeletePlanned(ctx context.Context, sessionID, itemID string) (bool, error)
	UpdatePlan(ctx context.Context, input *dto.UpdatePlanInput, at time.Time) (bool, error)

	Reserve(ctx context.Context, sessionID, itemID, actor string, expiresAt, now time.Time) (bool, error)
	Release(ctx context.Context, sessionID, itemID string, at time.Time) (bool, error)
	Cancel(ctx context.Context, sessionID, itemID string, at time.Time) (bool, error)
	// ConfirmPurchase marks the item PURCHASED and appends its lots in one transaction.
	ConfirmPurchase(ctx context.Context, sessionID, itemID string, lots []model.PurchaseLot, at time.Time) (bool, error)
}
