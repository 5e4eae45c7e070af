package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateKeyLayout = "2006-01-02"

type sessionUseCase struct {
	repo     session.Repository
	sweeper  session.PriceSweeper
	notifier notify.Publisher
	loc      *time.Location
	logger   logger.ZapLogger
}

// NewSessionUseCase resolves default date keys in loc, the shop's business timezone.
func NewSessionUseCase(repo session.Repository, sweeper session.PriceSweeper, notifier notify.Publisher, loc *time.Location, log logger.ZapLogger) session.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &sessionUseCase{
		repo:     repo,
		sweeper:  sweeper,
		notifier: notifier,
		loc:      loc,
		logger:   log,
	}
}

func (uc *sessionUseCase) Create(ctx context.Context, input *dto.CreateSessionInput) (*model.PurchaseSession, error) {
	dateKey := input.DateKey
	if dateKey == "" {
		dateKey = time.Now().In(uc.loc).AddDate(0, 0, 1).Format(dateKeyLayout)
	}
	dateKey, err := normalizeDateKey(dateKey)
	if err != nil {
		return nil, err
	}
	if input.PlannedBudget != nil && input.PlannedBudget.IsNegative() {
		return nil, apperror.Validation("planned_budget must not be negative")
	}

	existing, err := uc.repo.GetByDateKey(ctx, dateKey)
	if err != nil {
		return nil, apperror.Fatal(err, "load session by date")
	}
	if existing != nil {
		return nil, apperror.Conflict("a session already exists for %s", dateKey)
	}

	now := time.Now().UTC()
	s := &model.PurchaseSession{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DateKey:       dateKey,
		Status:        model.SessionPlanning,
		PlannedBudget: input.PlannedBudget,
		CreatedBy:     input.UserID,
	}

	if err := uc.repo.Create(ctx, s); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("a session already exists for %s", dateKey)
		}
		return nil, apperror.Fatal(err, "create session")
	}

	uc.logger.Info("Purchase session created", zap.String("session_id", s.ID), zap.String("date_key", s.DateKey))
	return s, nil
}

func (uc *sessionUseCase) Get(ctx context.Context, id string) (*model.PurchaseSession, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Fatal(err, "load session")
	}
	if s == nil {
		return nil, apperror.NotFound("session %s not found", id)
	}
	return s, nil
}

func (uc *sessionUseCase) List(ctx context.Context, filters *dto.SessionFilters) ([]model.PurchaseSession, error) {
	for _, key := range []*string{&filters.From, &filters.To} {
		if *key == "" {
			continue
		}
		normalized, err := normalizeDateKey(*key)
		if err != nil {
			return nil, err
		}
		*key = normalized
	}

	items, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperror.Fatal(err, "list sessions")
	}
	return items, nil
}

// Current prefers the open session, then the one being planned, then the most recent.
func (uc *sessionUseCase) Current(ctx context.Context) (*model.PurchaseSession, error) {
	for _, status := range []model.SessionStatus{model.SessionOpen, model.SessionPlanning, ""} {
		s, err := uc.repo.FindLatest(ctx, status)
		if err != nil {
			return nil, apperror.Fatal(err, "load current session")
		}
		if s != nil {
			return s, nil
		}
	}
	return nil, apperror.NotFound("no sessions yet")
}

func (uc *sessionUseCase) UpdateDate(ctx context.Context, id, dateKey string) (*model.PurchaseSession, error) {
	dateKey, err := normalizeDateKey(dateKey)
	if err != nil {
		return nil, err
	}

	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SessionPlanning {
		return nil, apperror.Conflict("session date can only change while PLANNING")
	}
	if s.DateKey == dateKey {
		return s, nil
	}

	clash, err := uc.repo.GetByDateKey(ctx, dateKey)
	if err != nil {
		return nil, apperror.Fatal(err, "load session by date")
	}
	if clash != nil {
		return nil, apperror.Conflict("a session already exists for %s", dateKey)
	}

	ok, err := uc.repo.UpdateDate(ctx, id, dateKey, time.Now().UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("a session already exists for %s", dateKey)
		}
		return nil, apperror.Fatal(err, "update session date")
	}
	if !ok {
		return nil, apperror.Conflict("session date can only change while PLANNING")
	}
	return uc.Get(ctx, id)
}

func (uc *sessionUseCase) UpdateBudget(ctx context.Context, input *dto.UpdateBudgetInput) (*model.PurchaseSession, error) {
	if input.PlannedBudget != nil && input.PlannedBudget.IsNegative() {
		return nil, apperror.Validation("planned_budget must not be negative")
	}

	if _, err := uc.Get(ctx, input.SessionID); err != nil {
		return nil, err
	}

	ok, err := uc.repo.UpdateBudget(ctx, input.SessionID, input.PlannedBudget, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "update session budget")
	}
	if !ok {
		return nil, apperror.Conflict("session budget can only change while PLANNING")
	}
	return uc.Get(ctx, input.SessionID)
}

func (uc *sessionUseCase) Open(ctx context.Context, id string) (*model.PurchaseSession, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}

	ok, err := uc.repo.TransitionStatus(ctx, id, model.SessionPlanning, model.SessionOpen, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "open session")
	}
	if !ok {
		return nil, apperror.Conflict("session is not PLANNING")
	}

	uc.logger.Info("Purchase session opened", zap.String("session_id", id))
	notify.Emit(ctx, uc.notifier, uc.logger, notify.Event{Type: notify.SessionOpened, SessionID: id})
	return uc.Get(ctx, id)
}

func (uc *sessionUseCase) Close(ctx context.Context, id string) (*model.PurchaseSession, error) {
	// 1. Validate status
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SessionOpen {
		return nil, apperror.Conflict("only an OPEN session can be closed")
	}

	// 2. Final sweep while the session still accepts price writes
	prices, err := uc.sweeper.RecomputeAll(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Freeze
	ok, err := uc.repo.TransitionStatus(ctx, id, model.SessionOpen, model.SessionClosed, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "close session")
	}
	if !ok {
		return nil, apperror.Conflict("only an OPEN session can be closed")
	}

	uc.logger.Info("Purchase session closed", zap.String("session_id", id), zap.Int("variants_priced", len(prices)))

	// 4. Tell subscribers
	notify.Emit(ctx, uc.notifier, uc.logger, notify.Event{Type: notify.SessionClosed, SessionID: id})
	return uc.Get(ctx, id)
}

func normalizeDateKey(s string) (string, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", apperror.Validation("invalid date key %q, expected YYYY-MM-DD", s)
	}
	return t.Format(dateKeyLayout), nil
}
