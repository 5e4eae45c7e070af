package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	lotDto "github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/search"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/setting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const boardCacheTTL = 5 * time.Minute

type pricingUseCase struct {
	repo        pricing.Repository
	lotRepo     lot.Repository
	catalogRepo catalog.Repository
	sessionRepo session.Repository
	settingRepo setting.Repository
	notifier    notify.Publisher
	cache       *cache.RedisClient
	es          *search.Client
	logger      logger.ZapLogger
}

// Deps groups the collaborators of the pricing engine. Cache and ES are optional.
type Deps struct {
	Repo        pricing.Repository
	LotRepo     lot.Repository
	CatalogRepo catalog.Repository
	SessionRepo session.Repository
	SettingRepo setting.Repository
	Notifier    notify.Publisher
	Cache       *cache.RedisClient
	ES          *search.Client
}

func NewPricingUseCase(d Deps, log logger.ZapLogger) pricing.UseCase {
	return &pricingUseCase{
		repo:        d.Repo,
		lotRepo:     d.LotRepo,
		catalogRepo: d.CatalogRepo,
		sessionRepo: d.SessionRepo,
		settingRepo: d.SettingRepo,
		notifier:    d.Notifier,
		cache:       d.Cache,
		es:          d.ES,
		logger:      log,
	}
}

func (uc *pricingUseCase) Recompute(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	// 1. Session must still accept price writes
	if _, err := uc.writableSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.recompute(ctx, sessionID, variantID)
}

// RecomputePurchased prices a variant whose lots were just committed. The lots were accepted
// while the session was OPEN, so the price is written even if the session has closed since.
func (uc *pricingUseCase) RecomputePurchased(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	dp, err := uc.recompute(ctx, sessionID, variantID)
	if err != nil {
		return nil, err
	}
	uc.dropBoardCache(ctx, sessionID)
	return dp, nil
}

func (uc *pricingUseCase) recompute(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	variant, err := uc.catalogRepo.GetVariant(ctx, variantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load variant")
	}
	if variant == nil {
		return nil, apperror.NotFound("variant %s not found", variantID)
	}

	// 2. Fresh settings snapshot
	cfg, err := setting.LoadSnapshot(ctx, uc.settingRepo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// 3. An active manual override wins
	existing, err := uc.repo.GetBySessionVariant(ctx, sessionID, variantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load daily price")
	}
	if existing != nil && existing.PricingMode == model.PricingManual && existing.ManualPrice != nil {
		return uc.reassertManual(ctx, sessionID, variantID, cfg, now)
	}

	// 4. Compute from lots
	lots, err := uc.lotRepo.FindAll(ctx, &lotDto.LotFilters{SessionID: sessionID, VariantID: variantID})
	if err != nil {
		return nil, apperror.Fatal(err, "load lots")
	}
	result := computePrice(lots, variant.UnitConfig(), *cfg)

	dp := &model.DailyPrice{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SessionID:      sessionID,
		VariantID:      variantID,
		SaleUnit:       variant.SaleUnit,
		NormalizedCost: result.NormalizedCost,
		MarginPct:      cfg.MarginPct,
		SalePrice:      result.SalePrice,
		PricingMode:    model.PricingAuto,
		Status:         result.Status,
		AnchorLotID:    result.AnchorLotID,
	}

	// 5. Upsert, unless an override landed in between
	written, err := uc.repo.UpsertAuto(ctx, dp)
	if err != nil {
		return nil, apperror.Fatal(err, "save daily price")
	}
	if !written {
		return uc.reassertManual(ctx, sessionID, variantID, cfg, now)
	}

	saved, err := uc.load(ctx, sessionID, variantID)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("Daily price recomputed",
		zap.String("session_id", sessionID),
		zap.String("variant_id", variantID),
		zap.String("status", string(saved.Status)),
		zap.Int("lots", len(lots)),
	)
	uc.afterWrite(ctx, saved)
	return saved, nil
}

func (uc *pricingUseCase) reassertManual(ctx context.Context, sessionID, variantID string, cfg *model.PricingConfig, now time.Time) (*model.DailyPrice, error) {
	if _, err := uc.repo.ReassertManual(ctx, sessionID, variantID, cfg.MarginPct, now); err != nil {
		return nil, apperror.Fatal(err, "reassert manual price")
	}
	saved, err := uc.load(ctx, sessionID, variantID)
	if err != nil {
		return nil, err
	}
	uc.afterWrite(ctx, saved)
	return saved, nil
}

func (uc *pricingUseCase) RecomputeAll(ctx context.Context, sessionID string) ([]model.DailyPrice, error) {
	if _, err := uc.writableSession(ctx, sessionID); err != nil {
		return nil, err
	}

	variantIDs, err := uc.lotRepo.DistinctVariants(ctx, sessionID)
	if err != nil {
		return nil, apperror.Fatal(err, "list purchased variants")
	}

	prices := make([]model.DailyPrice, 0, len(variantIDs))
	for _, variantID := range variantIDs {
		dp, err := uc.Recompute(ctx, sessionID, variantID)
		if err != nil {
			return nil, fmt.Errorf("recompute variant %s: %w", variantID, err)
		}
		prices = append(prices, *dp)
	}

	uc.logger.Info("Session prices recomputed", zap.String("session_id", sessionID), zap.Int("variants", len(prices)))
	return prices, nil
}

func (uc *pricingUseCase) SetManual(ctx context.Context, input *dto.SetManualInput) (*model.DailyPrice, error) {
	if !input.Price.IsPositive() {
		return nil, apperror.Validation("price must be greater than zero")
	}
	if _, err := uc.writableSession(ctx, input.SessionID); err != nil {
		return nil, err
	}

	variant, err := uc.catalogRepo.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load variant")
	}
	if variant == nil {
		return nil, apperror.NotFound("variant %s not found", input.VariantID)
	}

	cfg, err := setting.LoadSnapshot(ctx, uc.settingRepo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	price := input.Price
	var setBy *string
	if input.UserID != "" {
		setBy = &input.UserID
	}

	dp := &model.DailyPrice{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SessionID:   input.SessionID,
		VariantID:   input.VariantID,
		SaleUnit:    variant.SaleUnit,
		MarginPct:   cfg.MarginPct,
		SalePrice:   &price,
		PricingMode: model.PricingManual,
		ManualPrice: &price,
		ManualSetBy: setBy,
		ManualSetAt: &now,
		ManualNote:  input.Note,
		Status:      model.PriceReady,
	}
	if err := uc.repo.UpsertManual(ctx, dp); err != nil {
		return nil, apperror.Fatal(err, "save manual price")
	}

	saved, err := uc.load(ctx, input.SessionID, input.VariantID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Manual price set",
		zap.String("session_id", input.SessionID),
		zap.String("variant_id", input.VariantID),
		zap.String("price", price.String()),
		zap.String("set_by", input.UserID),
	)
	uc.afterWrite(ctx, saved)
	return saved, nil
}

func (uc *pricingUseCase) ClearManual(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	if _, err := uc.writableSession(ctx, sessionID); err != nil {
		return nil, err
	}

	cleared, err := uc.repo.ClearManual(ctx, sessionID, variantID, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "clear manual price")
	}
	if !cleared {
		existing, err := uc.repo.GetBySessionVariant(ctx, sessionID, variantID)
		if err != nil {
			return nil, apperror.Fatal(err, "load daily price")
		}
		if existing == nil {
			return nil, apperror.NotFound("no daily price for variant %s in session %s", variantID, sessionID)
		}
	}

	return uc.Recompute(ctx, sessionID, variantID)
}

func (uc *pricingUseCase) GetDailyPrice(ctx context.Context, sessionID, variantID string) (*model.DailyPriceView, error) {
	s, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dp, err := uc.load(ctx, sessionID, variantID)
	if err != nil {
		return nil, err
	}

	prev, err := uc.repo.FindPreviousReady(ctx, variantID, s.DateKey)
	if err != nil {
		return nil, apperror.Fatal(err, "load previous price")
	}

	name := ""
	if v, err := uc.catalogRepo.GetVariant(ctx, variantID); err == nil && v != nil {
		name = v.VariantName
	}

	view := enrich(*dp, name, prev)
	return &view, nil
}

func (uc *pricingUseCase) ListDailyPrices(ctx context.Context, filters *dto.DailyPriceFilters) ([]model.DailyPriceView, error) {
	s, err := uc.getSession(ctx, filters.SessionID)
	if err != nil {
		return nil, err
	}

	// Closed sessions never change, so their board can be served from cache
	cacheKey := boardCacheKey(filters)
	if uc.cache != nil && s.Status == model.SessionClosed {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var cached []model.DailyPriceView
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	prices, err := uc.repo.FindBySession(ctx, filters)
	if err != nil {
		return nil, apperror.Fatal(err, "list daily prices")
	}

	names, err := uc.variantNames(ctx, prices)
	if err != nil {
		return nil, err
	}

	views := make([]model.DailyPriceView, 0, len(prices))
	for _, dp := range prices {
		prev, err := uc.repo.FindPreviousReady(ctx, dp.VariantID, s.DateKey)
		if err != nil {
			return nil, apperror.Fatal(err, "load previous price")
		}
		view := enrich(dp, names[dp.VariantID], prev)
		if !filters.IncludeCosts {
			view = sanitize(view)
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].VariantName < views[j].VariantName
	})

	if uc.cache != nil && s.Status == model.SessionClosed {
		if data, err := json.Marshal(views); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, boardCacheTTL)
		}
	}

	return views, nil
}

func (uc *pricingUseCase) ListPending(ctx context.Context, sessionID string) ([]model.PendingPrice, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	prices, err := uc.repo.FindBySession(ctx, &dto.DailyPriceFilters{
		SessionID: sessionID,
		Statuses:  []model.PriceStatus{model.PricePending, model.PricePartial},
	})
	if err != nil {
		return nil, apperror.Fatal(err, "list pending prices")
	}

	names, err := uc.variantNames(ctx, prices)
	if err != nil {
		return nil, err
	}

	out := make([]model.PendingPrice, 0, len(prices))
	for _, dp := range prices {
		hint, err := uc.repo.FindLastManualPrice(ctx, dp.VariantID, sessionID)
		if err != nil {
			return nil, apperror.Fatal(err, "load last manual price")
		}
		out = append(out, model.PendingPrice{
			DailyPrice:      dp,
			VariantName:     names[dp.VariantID],
			LastManualPrice: hint,
		})
	}
	return out, nil
}

func (uc *pricingUseCase) getSession(ctx context.Context, sessionID string) (*model.PurchaseSession, error) {
	s, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.Fatal(err, "load session")
	}
	if s == nil {
		return nil, apperror.NotFound("session %s not found", sessionID)
	}
	return s, nil
}

func (uc *pricingUseCase) writableSession(ctx context.Context, sessionID string) (*model.PurchaseSession, error) {
	s, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status == model.SessionClosed {
		return nil, apperror.Conflict("session %s is closed", sessionID)
	}
	return s, nil
}

func (uc *pricingUseCase) load(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	dp, err := uc.repo.GetBySessionVariant(ctx, sessionID, variantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load daily price")
	}
	if dp == nil {
		return nil, apperror.NotFound("no daily price for variant %s in session %s", variantID, sessionID)
	}
	return dp, nil
}

func (uc *pricingUseCase) variantNames(ctx context.Context, prices []model.DailyPrice) (map[string]string, error) {
	ids := make([]string, 0, len(prices))
	for _, dp := range prices {
		ids = append(ids, dp.VariantID)
	}
	variants, err := uc.catalogRepo.GetVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Fatal(err, "load variants")
	}
	names := make(map[string]string, len(variants))
	for _, v := range variants {
		names[v.ID] = v.VariantName
	}
	return names, nil
}

func (uc *pricingUseCase) afterWrite(ctx context.Context, dp *model.DailyPrice) {
	uc.syncToElastic(dp)
	notify.Emit(ctx, uc.notifier, uc.logger, notify.Event{
		Type:      notify.DailyPriceUpdated,
		SessionID: dp.SessionID,
		VariantID: dp.VariantID,
	})
}

func boardCacheKey(f *dto.DailyPriceFilters) string {
	return fmt.Sprintf("board:%s:ready=%t:costs=%t", f.SessionID, f.OnlyReady, f.IncludeCosts)
}

// dropBoardCache forgets every cached board variant of a session.
func (uc *pricingUseCase) dropBoardCache(ctx context.Context, sessionID string) {
	if uc.cache == nil {
		return
	}
	keys := make([]string, 0, 4)
	for _, ready := range []bool{false, true} {
		for _, costs := range []bool{false, true} {
			keys = append(keys, boardCacheKey(&dto.DailyPriceFilters{SessionID: sessionID, OnlyReady: ready, IncludeCosts: costs}))
		}
	}
	if err := uc.cache.Client.Del(ctx, keys...).Err(); err != nil {
		uc.logger.Warn("failed to drop cached board", zap.String("session_id", sessionID), zap.Error(err))
	}
}
