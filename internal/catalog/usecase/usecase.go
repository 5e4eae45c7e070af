package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"go.uber.org/zap"
)

type catalogUseCase struct {
	repo       catalog.Repository
	lotRepo    lot.Repository
	recomputer catalog.VariantRecomputer
	logger     logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, lotRepo lot.Repository, recomputer catalog.VariantRecomputer, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:       repo,
		lotRepo:    lotRepo,
		recomputer: recomputer,
		logger:     log,
	}
}

func (uc *catalogUseCase) GetVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	v, err := uc.repo.GetVariant(ctx, id)
	if err != nil {
		return nil, apperror.Fatal(err, "load variant")
	}
	if v == nil {
		return nil, apperror.NotFound("variant %s not found", id)
	}
	return v, nil
}

func (uc *catalogUseCase) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	s, err := uc.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, apperror.Fatal(err, "load supplier")
	}
	if s == nil {
		return nil, apperror.NotFound("supplier %s not found", id)
	}
	return s, nil
}

func (uc *catalogUseCase) UpdateUnitConfig(ctx context.Context, input *dto.UpdateUnitConfigInput) (*dto.UnitConfigResult, error) {
	// 1. Parse and validate
	saleUnit, ok := unit.Parse(input.SaleUnit)
	if !ok {
		return nil, apperror.Validation("unknown sale unit %q", input.SaleUnit)
	}
	cfg := unit.Config{SaleUnit: saleUnit, ConversionFactor: input.ConversionFactor}
	if input.PurchaseUnit != "" {
		pu, ok := unit.Parse(input.PurchaseUnit)
		if !ok {
			return nil, apperror.Validation("unknown purchase unit %q", input.PurchaseUnit)
		}
		cfg.PurchaseUnit = pu
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	// 2. Save
	updated, err := uc.repo.UpdateUnitConfig(ctx, input.VariantID, cfg, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "update unit config")
	}
	if !updated {
		return nil, apperror.NotFound("variant %s not found", input.VariantID)
	}

	variant, err := uc.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}

	// 3. Reprice the variant in every session still accepting purchases
	sessionIDs, err := uc.lotRepo.FindActiveSessionsWithVariant(ctx, input.VariantID)
	if err != nil {
		return nil, apperror.Fatal(err, "find sessions with variant")
	}

	result := &dto.UnitConfigResult{Variant: variant, Recomputed: []model.DailyPrice{}}
	for _, sid := range sessionIDs {
		dp, err := uc.recomputer.Recompute(ctx, sid, input.VariantID)
		if err != nil {
			return nil, err
		}
		result.Recomputed = append(result.Recomputed, *dp)
	}

	uc.logger.Info("Unit config updated",
		zap.String("variant_id", input.VariantID),
		zap.String("sale_unit", string(cfg.SaleUnit)),
		zap.String("purchase_unit", string(cfg.PurchaseUnit)),
		zap.Int("recomputed", len(result.Recomputed)),
	)
	return result, nil
}
