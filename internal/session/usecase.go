package session

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateSessionInput) (*model.PurchaseSession, error)
	Get(ctx context.Context, id string) (*model.PurchaseSession, error)
	List(ctx context.Context, filters *dto.SessionFilters) ([]model.PurchaseSession, error)
	Current(ctx context.Context) (*model.PurchaseSession, error)
	UpdateDate(ctx context.Context, id, dateKey string) (*model.PurchaseSession, error)
	UpdateBudget(ctx context.Context, input *dto.UpdateBudgetInput) (*model.PurchaseSession, error)
	Open(ctx context.Context, id string) (*model.PurchaseSession, error)
	// Close reprices every purchased variant and then freezes the session.
	Close(ctx context.Context, id string) (*model.PurchaseSession, error)
}

// PriceSweeper is the part of the pricing engine the lifecycle needs at close.
type PriceSweeper interface {
	RecomputeAll(ctx context.Context, sessionID string) ([]model.DailyPrice, error)
}
