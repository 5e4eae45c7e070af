package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/setting"
	"github.com/fekuna/omnipos-pricing-service/internal/setting/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	hundred   = decimal.NewFromInt(100)
	maxMargin = decimal.NewFromInt(2)
)

type settingUseCase struct {
	repo        setting.Repository
	sessionRepo session.Repository
	recomputer  setting.SessionRecomputer
	logger      logger.ZapLogger
}

func NewSettingUseCase(repo setting.Repository, sessionRepo session.Repository, recomputer setting.SessionRecomputer, log logger.ZapLogger) setting.UseCase {
	return &settingUseCase{
		repo:        repo,
		sessionRepo: sessionRepo,
		recomputer:  recomputer,
		logger:      log,
	}
}

func (uc *settingUseCase) Snapshot(ctx context.Context) (*model.PricingConfig, error) {
	return setting.LoadSnapshot(ctx, uc.repo)
}

// SetMargin accepts a fraction (0.35) or a percentage (35).
func (uc *settingUseCase) SetMargin(ctx context.Context, value decimal.Decimal) (*dto.PricingSettingsResult, error) {
	margin := value
	if margin.GreaterThan(decimal.NewFromInt(1)) {
		margin = margin.Div(hundred)
	}
	if !margin.IsPositive() || !margin.LessThan(maxMargin) {
		return nil, apperror.Validation("margin must be greater than 0 and lower than 2")
	}

	if err := uc.repo.SetNumber(ctx, setting.KeyMarginPct, margin, time.Now().UTC()); err != nil {
		return nil, apperror.Fatal(err, "save margin")
	}
	uc.logger.Info("Margin updated", zap.String("margin_pct", margin.String()))

	return uc.recomputeOpenSession(ctx)
}

func (uc *settingUseCase) SetRoundStep(ctx context.Context, value decimal.Decimal) (*dto.PricingSettingsResult, error) {
	if !value.IsPositive() {
		return nil, apperror.Validation("round step must be greater than zero")
	}

	if err := uc.repo.SetNumber(ctx, setting.KeyRoundStep, value, time.Now().UTC()); err != nil {
		return nil, apperror.Fatal(err, "save round step")
	}
	uc.logger.Info("Round step updated", zap.String("round_step", value.String()))

	return uc.recomputeOpenSession(ctx)
}

// recomputeOpenSession reprices the latest OPEN session, if any, with the new parameters.
func (uc *settingUseCase) recomputeOpenSession(ctx context.Context) (*dto.PricingSettingsResult, error) {
	cfg, err := setting.LoadSnapshot(ctx, uc.repo)
	if err != nil {
		return nil, err
	}
	result := &dto.PricingSettingsResult{
		MarginPct: cfg.MarginPct,
		RoundStep: cfg.RoundStep,
	}

	s, err := uc.sessionRepo.FindLatest(ctx, model.SessionOpen)
	if err != nil {
		return nil, apperror.Fatal(err, "find open session")
	}
	if s == nil {
		return result, nil
	}

	prices, err := uc.recomputer.RecomputeAll(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	result.RecomputedSessionID = &s.ID
	result.RecomputedVariants = len(prices)
	return result, nil
}
