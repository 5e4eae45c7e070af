package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/item"
	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	lotDto "github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var reservationMinutes = map[int]bool{10: true, 15: true, 30: true}

type itemUseCase struct {
	repo        item.Repository
	sessionRepo session.Repository
	catalogRepo catalog.Repository
	lotRepo     lot.Repository
	pricing     item.VariantRecomputer
	notifier    notify.Publisher
	logger      logger.ZapLogger
}

func NewItemUseCase(
	repo item.Repository,
	sessionRepo session.Repository,
	catalogRepo catalog.Repository,
	lotRepo lot.Repository,
	pricing item.VariantRecomputer,
	notifier notify.Publisher,
	log logger.ZapLogger,
) item.UseCase {
	return &itemUseCase{
		repo:        repo,
		sessionRepo: sessionRepo,
		catalogRepo: catalogRepo,
		lotRepo:     lotRepo,
		pricing:     pricing,
		notifier:    notifier,
		logger:      log,
	}
}

func (uc *itemUseCase) AddItem(ctx context.Context, input *dto.AddItemInput) (*model.SessionItem, error) {
	origin := input.Origin
	if origin == "" {
		origin = model.OriginPlanned
	}
	if origin != model.OriginPlanned && origin != model.OriginUnplanned {
		return nil, apperror.Validation("origin must be PLANNED or UNPLANNED")
	}
	if err := positiveOrNil("planned_quantity", input.PlannedQuantity); err != nil {
		return nil, err
	}
	if err := positiveOrNil("reference_price", input.ReferencePrice); err != nil {
		return nil, err
	}
	refUnit, err := parseOptionalUnit(input.ReferencePurchaseUnit)
	if err != nil {
		return nil, err
	}

	s, err := uc.loadSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Status == model.SessionClosed {
		return nil, apperror.Conflict("cannot add items to a closed session")
	}

	variant, err := uc.catalogRepo.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load variant")
	}
	if variant == nil {
		return nil, apperror.NotFound("variant %s not found", input.VariantID)
	}

	existing, err := uc.repo.GetBySessionVariant(ctx, input.SessionID, input.VariantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load session item")
	}
	if existing != nil {
		return nil, apperror.Conflict("variant %s is already in this session", input.VariantID)
	}

	// Reference price falls back to the last real purchase of the variant
	refPrice := input.ReferencePrice
	if refPrice == nil {
		last, err := uc.lotRepo.FindLastByVariant(ctx, input.VariantID)
		if err != nil {
			uc.logger.Warn("failed to load last lot for reference price", zap.String("variant_id", input.VariantID), zap.Error(err))
		} else if last != nil {
			cost := last.UnitCost
			refPrice = &cost
			if refUnit == "" {
				refUnit = last.PurchaseUnit
			}
		}
	}
	if refUnit == "" {
		refUnit = variant.PurchaseUnit
	}
	if refUnit == "" {
		refUnit = variant.SaleUnit
	}

	now := time.Now().UTC()
	it := &model.SessionItem{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SessionID:             input.SessionID,
		VariantID:             input.VariantID,
		Origin:                origin,
		PlannedQuantity:       input.PlannedQuantity,
		ReferencePrice:        refPrice,
		ReferencePurchaseUnit: refUnit,
		State:                 model.ItemPending,
	}

	if err := uc.repo.Create(ctx, it); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("variant %s is already in this session", input.VariantID)
		}
		return nil, apperror.Fatal(err, "create session item")
	}

	uc.emit(ctx, notify.ItemAdded, it)
	return it, nil
}

func (uc *itemUseCase) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	s, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Status != model.SessionPlanning {
		return apperror.Conflict("items can only be removed while the session is PLANNING")
	}

	it, err := uc.loadItem(ctx, sessionID, itemID)
	if err != nil {
		return err
	}

	ok, err := uc.repo.DeletePlanned(ctx, sessionID, itemID)
	if err != nil {
		return apperror.Fatal(err, "delete session item")
	}
	if !ok {
		return apperror.Conflict("only PENDING planned items can be removed")
	}

	uc.emit(ctx, notify.ItemRemoved, it)
	return nil
}

func (uc *itemUseCase) UpdatePlan(ctx context.Context, input *dto.UpdatePlanInput) (*model.SessionItem, error) {
	if err := positiveOrNil("planned_quantity", input.PlannedQuantity); err != nil {
		return nil, err
	}
	if err := positiveOrNil("reference_price", input.ReferencePrice); err != nil {
		return nil, err
	}
	refUnit, err := parseOptionalUnit(input.ReferencePurchaseUnit)
	if err != nil {
		return nil, err
	}

	s, err := uc.loadSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SessionPlanning {
		return nil, apperror.Conflict("the plan can only change while the session is PLANNING")
	}

	current, err := uc.loadItem(ctx, input.SessionID, input.ItemID)
	if err != nil {
		return nil, err
	}
	// Omitted fields keep their current value
	if input.PlannedQuantity == nil {
		input.PlannedQuantity = current.PlannedQuantity
	}
	if input.ReferencePrice == nil {
		input.ReferencePrice = current.ReferencePrice
	}
	if refUnit == "" {
		refUnit = current.ReferencePurchaseUnit
	}
	input.ReferencePurchaseUnit = string(refUnit)

	ok, err := uc.repo.UpdatePlan(ctx, input, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "update session item")
	}
	if !ok {
		return nil, apperror.Conflict("only PENDING planned items can be edited")
	}

	it, err := uc.loadItem(ctx, input.SessionID, input.ItemID)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, notify.ItemUpdated, it)
	return it, nil
}

func (uc *itemUseCase) ListItems(ctx context.Context, sessionID string) ([]model.SessionItemView, error) {
	if _, err := uc.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	items, err := uc.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Fatal(err, "list session items")
	}
	lots, err := uc.lotRepo.FindAll(ctx, &lotDto.LotFilters{SessionID: sessionID})
	if err != nil {
		return nil, apperror.Fatal(err, "list session lots")
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VariantID)
	}
	variants, err := uc.catalogRepo.GetVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Fatal(err, "load variants")
	}
	byID := make(map[string]model.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	summaries := summarize(lots)
	now := time.Now().UTC()

	views := make([]model.SessionItemView, 0, len(items))
	for _, it := range items {
		v := byID[it.VariantID]
		views = append(views, model.SessionItemView{
			SessionItem: it.Effective(now),
			VariantName: v.VariantName,
			SaleUnit:    v.SaleUnit,
			Purchased:   summaries[it.VariantID],
		})
	}
	return views, nil
}

func (uc *itemUseCase) Reserve(ctx context.Context, input *dto.ReserveInput) (*model.SessionItem, error) {
	if !reservationMinutes[input.Minutes] {
		return nil, apperror.Validation("minutes must be 10, 15 or 30")
	}
	if input.UserID == "" {
		return nil, apperror.Validation("actor is required")
	}

	s, err := uc.loadSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SessionOpen {
		return nil, apperror.Conflict("items can only be reserved in an OPEN session")
	}
	if _, err := uc.loadItem(ctx, input.SessionID, input.ItemID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(input.Minutes) * time.Minute)

	ok, err := uc.repo.Reserve(ctx, input.SessionID, input.ItemID, input.UserID, expiresAt, now)
	if err != nil {
		return nil, apperror.Fatal(err, "reserve session item")
	}
	if !ok {
		return nil, apperror.Conflict("item is unavailable")
	}

	it, err := uc.loadItem(ctx, input.SessionID, input.ItemID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Item reserved",
		zap.String("session_id", input.SessionID),
		zap.String("item_id", input.ItemID),
		zap.String("reserved_by", input.UserID),
		zap.Int("minutes", input.Minutes),
	)
	uc.emit(ctx, notify.ItemReserved, it)
	return it, nil
}

func (uc *itemUseCase) Release(ctx context.Context, sessionID, itemID, actor string) (*model.SessionItem, error) {
	if err := uc.requireNotClosed(ctx, sessionID); err != nil {
		return nil, err
	}
	if _, err := uc.loadItem(ctx, sessionID, itemID); err != nil {
		return nil, err
	}

	ok, err := uc.repo.Release(ctx, sessionID, itemID, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "release session item")
	}
	if !ok {
		// the session may have closed after the check above
		if err := uc.requireNotClosed(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("item is not reserved")
	}

	it, err := uc.loadItem(ctx, sessionID, itemID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Item released", zap.String("item_id", itemID), zap.String("actor", actor))
	uc.emit(ctx, notify.ItemReleased, it)
	return it, nil
}

func (uc *itemUseCase) Cancel(ctx context.Context, sessionID, itemID, actor string) (*model.SessionItem, error) {
	if err := uc.requireNotClosed(ctx, sessionID); err != nil {
		return nil, err
	}
	current, err := uc.loadItem(ctx, sessionID, itemID)
	if err != nil {
		return nil, err
	}

	ok, err := uc.repo.Cancel(ctx, sessionID, itemID, time.Now().UTC())
	if err != nil {
		return nil, apperror.Fatal(err, "cancel session item")
	}
	if !ok {
		if err := uc.requireNotClosed(ctx, sessionID); err != nil {
			return nil, err
		}
		if current.State == model.ItemPurchased {
			return nil, apperror.Conflict("a purchased item cannot be cancelled")
		}
		return nil, apperror.Conflict("item is already %s", current.State)
	}

	it, err := uc.loadItem(ctx, sessionID, itemID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Item cancelled", zap.String("item_id", itemID), zap.String("actor", actor))
	uc.emit(ctx, notify.ItemCancelled, it)
	return it, nil
}

func (uc *itemUseCase) Confirm(ctx context.Context, input *dto.ConfirmInput) (*dto.ConfirmResult, error) {
	// 1. Validate input
	if !input.Quantity.IsPositive() || !input.UnitCost.IsPositive() {
		return nil, apperror.Validation("quantity and unit_cost must be greater than zero")
	}
	if input.UserID == "" {
		return nil, apperror.Validation("actor is required")
	}

	// 2. Session, supplier, item, variant
	s, err := uc.loadSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SessionOpen {
		return nil, apperror.Conflict("purchases can only be confirmed in an OPEN session")
	}

	supplier, err := uc.catalogRepo.GetSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, apperror.Fatal(err, "load supplier")
	}
	if supplier == nil || !supplier.IsActive {
		return nil, apperror.NotFound("supplier %s is not valid", input.SupplierID)
	}

	it, err := uc.loadItem(ctx, input.SessionID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if it.State.Terminal() {
		return nil, apperror.Conflict("item is already %s", it.State)
	}

	variant, err := uc.catalogRepo.GetVariant(ctx, it.VariantID)
	if err != nil {
		return nil, apperror.Fatal(err, "load variant")
	}
	if variant == nil {
		return nil, apperror.NotFound("variant %s not found", it.VariantID)
	}

	// 3. Resolve the purchase unit and split into lots
	purchaseUnit := variant.PurchaseUnit
	if purchaseUnit == "" {
		purchaseUnit = it.ReferencePurchaseUnit
	}
	if purchaseUnit == "" {
		return nil, apperror.Validation("set a purchase unit on the variant or a reference purchase unit on the item")
	}

	now := time.Now().UTC()
	lots, err := buildLots(it, input, purchaseUnit, now)
	if err != nil {
		return nil, err
	}

	// 4. Claim the item and append lots atomically
	ok, err := uc.repo.ConfirmPurchase(ctx, input.SessionID, input.ItemID, lots, now)
	if err != nil {
		return nil, apperror.Fatal(err, "confirm purchase")
	}
	if !ok {
		return nil, apperror.Conflict("item is unavailable")
	}

	uc.logger.Info("Purchase confirmed",
		zap.String("session_id", input.SessionID),
		zap.String("item_id", input.ItemID),
		zap.String("variant_id", it.VariantID),
		zap.String("purchase_unit", string(purchaseUnit)),
		zap.Int("lots", len(lots)),
	)

	confirmed, err := uc.loadItem(ctx, input.SessionID, input.ItemID)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, notify.ItemConfirmed, confirmed)

	// 5. Reprice the variant before answering, even if the session closed meanwhile
	dp, err := uc.pricing.RecomputePurchased(ctx, input.SessionID, it.VariantID)
	if err != nil {
		return nil, err
	}

	return &dto.ConfirmResult{Item: confirmed, Lots: lots, DailyPrice: dp}, nil
}

// maxLotsPerConfirm bounds the lots one confirmation may append.
const maxLotsPerConfirm = 500

// buildLots creates one lot per physical container for discrete units, else a single lot.
func buildLots(it *model.SessionItem, input *dto.ConfirmInput, purchaseUnit unit.Unit, now time.Time) ([]model.PurchaseLot, error) {
	newLot := func(qty decimal.Decimal) model.PurchaseLot {
		return model.PurchaseLot{
			ID:           uuid.New().String(),
			SessionID:    it.SessionID,
			VariantID:    it.VariantID,
			SupplierID:   input.SupplierID,
			Quantity:     qty,
			UnitCost:     input.UnitCost,
			PurchaseUnit: purchaseUnit,
			PurchasedBy:  input.UserID,
			PurchasedAt:  now,
			CreatedAt:    now,
		}
	}

	if !unit.IsDiscrete(purchaseUnit) {
		return []model.PurchaseLot{newLot(input.Quantity)}, nil
	}

	if !input.Quantity.IsInteger() {
		return nil, apperror.Validation("quantity must be a whole number for %s", purchaseUnit)
	}
	n := input.Quantity.IntPart()
	if !decimal.NewFromInt(n).Equal(input.Quantity) || n > maxLotsPerConfirm {
		return nil, apperror.Validation("at most %d %s can be confirmed at once", maxLotsPerConfirm, purchaseUnit)
	}
	lots := make([]model.PurchaseLot, 0, n)
	for i := int64(0); i < n; i++ {
		lots = append(lots, newLot(decimal.NewFromInt(1)))
	}
	return lots, nil
}

func summarize(lots []model.PurchaseLot) map[string]*model.PurchaseSummary {
	out := make(map[string]*model.PurchaseSummary)
	for i := range lots {
		l := &lots[i]
		s, ok := out[l.VariantID]
		if !ok {
			s = &model.PurchaseSummary{Quantity: decimal.Zero, Total: decimal.Zero}
			out[l.VariantID] = s
		}
		s.LotCount++
		s.Quantity = s.Quantity.Add(l.Quantity)
		s.Total = s.Total.Add(l.Total())
		if s.LastPurchaseAt == nil || l.PurchasedAt.After(*s.LastPurchaseAt) {
			t := l.PurchasedAt
			s.LastPurchaseAt = &t
		}
	}
	return out
}

func (uc *itemUseCase) loadSession(ctx context.Context, sessionID string) (*model.PurchaseSession, error) {
	s, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.Fatal(err, "load session")
	}
	if s == nil {
		return nil, apperror.NotFound("session %s not found", sessionID)
	}
	return s, nil
}

func (uc *itemUseCase) requireNotClosed(ctx context.Context, sessionID string) error {
	s, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Status == model.SessionClosed {
		return apperror.Conflict("session %s is closed", sessionID)
	}
	return nil
}

func (uc *itemUseCase) loadItem(ctx context.Context, sessionID, itemID string) (*model.SessionItem, error) {
	it, err := uc.repo.GetByID(ctx, sessionID, itemID)
	if err != nil {
		return nil, apperror.Fatal(err, "load session item")
	}
	if it == nil {
		return nil, apperror.NotFound("item %s not found in session %s", itemID, sessionID)
	}
	return it, nil
}

func (uc *itemUseCase) emit(ctx context.Context, t notify.EventType, it *model.SessionItem) {
	notify.Emit(ctx, uc.notifier, uc.logger, notify.Event{
		Type:      t,
		SessionID: it.SessionID,
		VariantID: it.VariantID,
		ItemID:    it.ID,
	})
}

func positiveOrNil(field string, v *decimal.Decimal) error {
	if v != nil && !v.IsPositive() {
		return apperror.Validation("%s must be greater than zero", field)
	}
	return nil
}

func parseOptionalUnit(s string) (unit.Unit, error) {
	if s == "" {
		return "", nil
	}
	u, ok := unit.Parse(s)
	if !ok {
		return "", apperror.Validation("unknown unit %q", s)
	}
	return u, nil
}
