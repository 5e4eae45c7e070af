package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"go.uber.org/zap"
)

type lotUseCase struct {
	repo        lot.Repository
	sessionRepo session.Repository
	pricing     lot.VariantRecomputer
	logger      logger.ZapLogger
}

func NewLotUseCase(repo lot.Repository, sessionRepo session.Repository, pricing lot.VariantRecomputer, log logger.ZapLogger) lot.UseCase {
	return &lotUseCase{
		repo:        repo,
		sessionRepo: sessionRepo,
		pricing:     pricing,
		logger:      log,
	}
}

func (uc *lotUseCase) List(ctx context.Context, filters *dto.LotFilters) ([]model.PurchaseLot, error) {
	lots, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperror.Fatal(err, "list lots")
	}
	return lots, nil
}

func (uc *lotUseCase) Get(ctx context.Context, id string) (*model.PurchaseLot, error) {
	l, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Fatal(err, "load lot")
	}
	if l == nil {
		return nil, apperror.NotFound("lot %s not found", id)
	}
	return l, nil
}

// Weigh records the net weight of a container lot once and reprices its variant.
func (uc *lotUseCase) Weigh(ctx context.Context, input *dto.WeighLotInput) (*dto.WeighResult, error) {
	// 1. Validate
	if !input.NetWeight.IsPositive() {
		return nil, apperror.Validation("net_weight must be greater than zero")
	}

	l, err := uc.Get(ctx, input.LotID)
	if err != nil {
		return nil, err
	}
	if !unit.IsDiscrete(l.PurchaseUnit) {
		return nil, apperror.Validation("lot %s is sold by %s and cannot be weighed", l.ID, l.PurchaseUnit)
	}

	s, err := uc.sessionRepo.GetByID(ctx, l.SessionID)
	if err != nil {
		return nil, apperror.Fatal(err, "load session")
	}
	if s == nil {
		return nil, apperror.NotFound("session %s not found", l.SessionID)
	}
	if s.Status == model.SessionClosed {
		return nil, apperror.Conflict("session %s is closed", s.ID)
	}

	// 2. Write once
	ok, err := uc.repo.SetWeight(ctx, l.ID, input.NetWeight, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "save lot weight")
	}
	if !ok {
		return nil, apperror.Conflict("lot %s was already weighed", l.ID)
	}

	uc.logger.Info("Lot weighed",
		zap.String("lot_id", l.ID),
		zap.String("net_weight", input.NetWeight.String()),
		zap.String("weighed_by", input.UserID),
	)

	weighed, err := uc.Get(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	// 3. Reprice
	dp, err := uc.pricing.Recompute(ctx, l.SessionID, l.VariantID)
	if err != nil {
		return nil, err
	}

	return &dto.WeighResult{Lot: weighed, DailyPrice: dp}, nil
}
