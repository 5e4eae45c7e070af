package session

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, s *model.PurchaseSession) error
	GetByID(ctx context.Context, id string) (*model.PurchaseSession, error)
	GetByDateKey(ctx context.Context, dateKey string) (*model.PurchaseSession, error)
	FindAll(ctx context.Context, filters *dto.SessionFilters) ([]model.PurchaseSession, error)
	// FindLatest returns the session with the greatest date key, optionally restricted to a status.
	FindLatest(ctx context.Context, status model.SessionStatus) (*model.PurchaseSession, error)

	// Conditional writes report false when the session was not in the expected status.
	UpdateDate(ctx context.Context, id, dateKey string, at time.Time) (bool, error)
	UpdateBudget(ctx context.Context, id string, budget *decimal.Decimal, at time.Time) (bool, error)
	TransitionStatus(ctx context.Context, id string, from, to model.SessionStatus, at time.Time) (bool, error)
}
