package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	catalogRepo "github.com/fekuna/omnipos-pricing-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-pricing-service/internal/item"
	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	itemRepo "github.com/fekuna/omnipos-pricing-service/internal/item/repository"
	itemUC "github.com/fekuna/omnipos-pricing-service/internal/item/usecase"
	lotDto "github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	lotRepo "github.com/fekuna/omnipos-pricing-service/internal/lot/repository"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	sessionRepo "github.com/fekuna/omnipos-pricing-service/internal/session/repository"
	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env      *testutil.TestEnv
	session  *model.PurchaseSession
	tomato   *model.ProductVariant
	supplier *model.Supplier
}

func setup(t *testing.T, status model.SessionStatus) *fixture {
	env := testutil.NewTestEnv(t)
	return &fixture{
		env:      env,
		session:  testutil.SeedSession(t, env.DB, "2026-03-10", status),
		tomato:   testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Box}),
		supplier: testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true),
	}
}

func (f *fixture) expire(t *testing.T, itemID string) {
	query := f.env.DB.Rebind(`UPDATE session_items SET reservation_expires_at = ? WHERE id = ?`)
	_, err := f.env.DB.Exec(query, time.Now().UTC().Add(-time.Minute), itemID)
	require.NoError(t, err)
}

func (f *fixture) reserve(itemID, buyer string) (*model.SessionItem, error) {
	return f.env.UseCases.Item.Reserve(context.Background(), &dto.ReserveInput{
		SessionID: f.session.ID, ItemID: itemID, Minutes: 15, UserID: buyer,
	})
}

func TestReserve_ConcurrentBuyersOnlyOneWins(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		wins      int32
		conflicts int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.reserve(it.ID, fmt.Sprintf("buyer-%d", i))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case apperror.IsConflict(err):
				atomic.AddInt32(&conflicts, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(buyers-1), conflicts)
	assert.Equal(t, 1, f.env.Events.Count(notify.ItemReserved))
}

func TestReserve_ExpiredReservationCanBeTaken(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.reserve(it.ID, "ana")
	require.NoError(t, err)

	_, err = f.reserve(it.ID, "beto")
	require.True(t, apperror.IsConflict(err))

	f.expire(t, it.ID)

	got, err := f.reserve(it.ID, "beto")
	require.NoError(t, err)
	assert.Equal(t, model.ItemReserved, got.State)
	require.NotNil(t, got.ReservedBy)
	assert.Equal(t, "beto", *got.ReservedBy)
}

func TestReserve_Validation(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.env.UseCases.Item.Reserve(context.Background(), &dto.ReserveInput{
		SessionID: f.session.ID, ItemID: it.ID, Minutes: 20, UserID: "ana",
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.reserve("missing", "ana")
	assert.True(t, apperror.IsNotFound(err))
}

func TestReserve_RequiresOpenSession(t *testing.T) {
	f := setup(t, model.SessionPlanning)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.reserve(it.ID, "ana")

	assert.True(t, apperror.IsConflict(err))
}

func TestListItems_ShowsExpiredReservationAsPending(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)
	_, err := f.reserve(it.ID, "ana")
	require.NoError(t, err)
	f.expire(t, it.ID)

	items, err := f.env.UseCases.Item.ListItems(context.Background(), f.session.ID)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, model.ItemPending, items[0].State)
	assert.Nil(t, items[0].ReservedBy)
	assert.Equal(t, "Tomato", items[0].VariantName)
}

func TestReleaseAndCancel(t *testing.T) {
	f := setup(t, model.SessionOpen)
	ctx := context.Background()
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.env.UseCases.Item.Release(ctx, f.session.ID, it.ID, "ana")
	assert.True(t, apperror.IsConflict(err), "pending items cannot be released")

	_, err = f.reserve(it.ID, "ana")
	require.NoError(t, err)
	released, err := f.env.UseCases.Item.Release(ctx, f.session.ID, it.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, model.ItemPending, released.State)

	cancelled, err := f.env.UseCases.Item.Cancel(ctx, f.session.ID, it.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, model.ItemCancelled, cancelled.State)

	_, err = f.env.UseCases.Item.Cancel(ctx, f.session.ID, it.ID, "ana")
	assert.True(t, apperror.IsConflict(err))

	_, err = f.reserve(it.ID, "ana")
	assert.True(t, apperror.IsConflict(err))
}

func TestConfirm_BoxQuantitySplitsIntoLots(t *testing.T) {
	f := setup(t, model.SessionOpen)
	ctx := context.Background()
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)
	_, err := f.reserve(it.ID, "ana")
	require.NoError(t, err)

	res, err := f.env.UseCases.Item.Confirm(ctx, &dto.ConfirmInput{
		SessionID:  f.session.ID,
		ItemID:     it.ID,
		SupplierID: f.supplier.ID,
		Quantity:   testutil.Dec("3"),
		UnitCost:   testutil.Dec("6000"),
		UserID:     "ana",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ItemPurchased, res.Item.State)
	require.Len(t, res.Lots, 3)
	for _, l := range res.Lots {
		assert.True(t, l.Quantity.Equal(testutil.Dec("1")))
		assert.Equal(t, unit.Box, l.PurchaseUnit)
	}
	// unweighed boxes cannot be converted to a price per kg yet
	require.NotNil(t, res.DailyPrice)
	assert.Equal(t, model.PricePartial, res.DailyPrice.Status)

	stored, err := f.env.UseCases.Lot.List(ctx, &lotDto.LotFilters{SessionID: f.session.ID})
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Equal(t, 1, f.env.Events.Count(notify.ItemConfirmed))

	// weighing one box makes the price ready: 6000 / 20kg = 300 -> 405 -> 450
	weighed, err := f.env.UseCases.Lot.Weigh(ctx, &lotDto.WeighLotInput{
		LotID: res.Lots[0].ID, NetWeight: testutil.Dec("20"), UserID: "scale",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriceReady, weighed.DailyPrice.Status)
	assert.True(t, weighed.DailyPrice.SalePrice.Equal(testutil.Dec("450")), weighed.DailyPrice.SalePrice.String())
}

func TestConfirm_FractionalBoxQuantityRejected(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.env.UseCases.Item.Confirm(context.Background(), &dto.ConfirmInput{
		SessionID: f.session.ID, ItemID: it.ID, SupplierID: f.supplier.ID,
		Quantity: testutil.Dec("2.5"), UnitCost: testutil.Dec("6000"), UserID: "ana",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestConfirm_WeightPurchaseMakesSingleLot(t *testing.T) {
	f := setup(t, model.SessionOpen)
	potato := testutil.SeedVariant(t, f.env.DB, "potato", "Potato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Weight})
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, potato.ID)

	res, err := f.env.UseCases.Item.Confirm(context.Background(), &dto.ConfirmInput{
		SessionID: f.session.ID, ItemID: it.ID, SupplierID: f.supplier.ID,
		Quantity: testutil.Dec("12.5"), UnitCost: testutil.Dec("400"), UserID: "ana",
	})
	require.NoError(t, err)

	require.Len(t, res.Lots, 1)
	assert.True(t, res.Lots[0].Quantity.Equal(testutil.Dec("12.5")))
	// 400 * 1.35 = 540 -> 550
	assert.True(t, res.DailyPrice.SalePrice.Equal(testutil.Dec("550")))
}

func TestConfirm_RejectsOtherBuyerWhileReserved(t *testing.T) {
	f := setup(t, model.SessionOpen)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)
	_, err := f.reserve(it.ID, "ana")
	require.NoError(t, err)

	input := &dto.ConfirmInput{
		SessionID: f.session.ID, ItemID: it.ID, SupplierID: f.supplier.ID,
		Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("6000"), UserID: "beto",
	}
	_, err = f.env.UseCases.Item.Confirm(context.Background(), input)
	assert.True(t, apperror.IsConflict(err))

	f.expire(t, it.ID)
	res, err := f.env.UseCases.Item.Confirm(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, model.ItemPurchased, res.Item.State)

	_, err = f.env.UseCases.Item.Confirm(context.Background(), input)
	assert.True(t, apperror.IsConflict(err), "a purchased item cannot be confirmed twice")
}

func TestConfirm_RejectsInactiveSupplier(t *testing.T) {
	f := setup(t, model.SessionOpen)
	testutil.SeedSupplier(t, f.env.DB, "sup-off", "Retired", false)
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	_, err := f.env.UseCases.Item.Confirm(context.Background(), &dto.ConfirmInput{
		SessionID: f.session.ID, ItemID: it.ID, SupplierID: "sup-off",
		Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("6000"), UserID: "ana",
	})

	assert.True(t, apperror.IsNotFound(err))
}

func TestAddItem_UsesLastPurchaseAsReference(t *testing.T) {
	f := setup(t, model.SessionPlanning)
	ctx := context.Background()
	earlier := testutil.SeedSession(t, f.env.DB, "2026-03-01", model.SessionClosed)
	testutil.SeedLot(t, f.env.DB, model.PurchaseLot{
		SessionID: earlier.ID, VariantID: f.tomato.ID, SupplierID: f.supplier.ID,
		Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("5800"), PurchaseUnit: unit.Box,
	})

	it, err := f.env.UseCases.Item.AddItem(ctx, &dto.AddItemInput{
		SessionID: f.session.ID, VariantID: f.tomato.ID, PlannedQuantity: testutil.DecPtr("4"), UserID: "owner",
	})
	require.NoError(t, err)

	assert.Equal(t, model.OriginPlanned, it.Origin)
	require.NotNil(t, it.ReferencePrice)
	assert.True(t, it.ReferencePrice.Equal(testutil.Dec("5800")))
	assert.Equal(t, unit.Box, it.ReferencePurchaseUnit)

	_, err = f.env.UseCases.Item.AddItem(ctx, &dto.AddItemInput{SessionID: f.session.ID, VariantID: f.tomato.ID})
	assert.True(t, apperror.IsConflict(err))
}

func TestPlanEditing_OnlyWhilePlanning(t *testing.T) {
	f := setup(t, model.SessionPlanning)
	ctx := context.Background()

	it, err := f.env.UseCases.Item.AddItem(ctx, &dto.AddItemInput{SessionID: f.session.ID, VariantID: f.tomato.ID})
	require.NoError(t, err)

	updated, err := f.env.UseCases.Item.UpdatePlan(ctx, &dto.UpdatePlanInput{
		SessionID: f.session.ID, ItemID: it.ID, PlannedQuantity: testutil.DecPtr("6"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PlannedQuantity)
	assert.True(t, updated.PlannedQuantity.Equal(testutil.Dec("6")))

	_, err = f.env.UseCases.Item.UpdatePlan(ctx, &dto.UpdatePlanInput{
		SessionID: f.session.ID, ItemID: it.ID, PlannedQuantity: testutil.DecPtr("-1"),
	})
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, f.env.UseCases.Item.RemoveItem(ctx, f.session.ID, it.ID))
	assert.Equal(t, 1, f.env.Events.Count(notify.ItemRemoved))

	_, err = f.env.UseCases.Session.Open(ctx, f.session.ID)
	require.NoError(t, err)

	again, err := f.env.UseCases.Item.AddItem(ctx, &dto.AddItemInput{
		SessionID: f.session.ID, VariantID: f.tomato.ID, Origin: model.OriginUnplanned,
	})
	require.NoError(t, err)
	err = f.env.UseCases.Item.RemoveItem(ctx, f.session.ID, again.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestReleaseAndCancel_RejectedAfterClose(t *testing.T) {
	f := setup(t, model.SessionOpen)
	ctx := context.Background()
	held := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)
	testutil.SeedVariant(t, f.env.DB, "lettuce", "Lettuce", unit.Config{SaleUnit: unit.Piece, PurchaseUnit: unit.Piece})
	pending := testutil.SeedItem(t, f.env.DB, f.session.ID, "lettuce")

	_, err := f.reserve(held.ID, "ana")
	require.NoError(t, err)
	_, err = f.env.UseCases.Session.Close(ctx, f.session.ID)
	require.NoError(t, err)

	_, err = f.env.UseCases.Item.Release(ctx, f.session.ID, held.ID, "bob")
	assert.True(t, apperror.IsConflict(err), "got %v", err)
	_, err = f.env.UseCases.Item.Cancel(ctx, f.session.ID, held.ID, "bob")
	assert.True(t, apperror.IsConflict(err), "got %v", err)
	_, err = f.env.UseCases.Item.Cancel(ctx, f.session.ID, pending.ID, "bob")
	assert.True(t, apperror.IsConflict(err), "got %v", err)

	items, err := f.env.UseCases.Item.ListItems(ctx, f.session.ID)
	require.NoError(t, err)
	states := map[string]model.ItemState{}
	for _, it := range items {
		states[it.ID] = it.State
	}
	assert.Equal(t, model.ItemReserved, states[held.ID])
	assert.Equal(t, model.ItemPending, states[pending.ID])
	assert.Zero(t, f.env.Events.Count(notify.ItemReleased))
	assert.Zero(t, f.env.Events.Count(notify.ItemCancelled))
}

func TestReleaseAndCancel_RepositoryGuardsClosedSession(t *testing.T) {
	f := setup(t, model.SessionClosed)
	ctx := context.Background()
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)
	repo := itemRepo.NewPGRepository(f.env.DB)

	ok, err := repo.Cancel(ctx, f.session.ID, it.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.env.DB.Exec(f.env.DB.Rebind(`UPDATE session_items SET state = ?, reserved_by = ? WHERE id = ?`),
		model.ItemReserved, "ana", it.ID)
	require.NoError(t, err)
	ok, err = repo.Release(ctx, f.session.ID, it.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirm_BoxQuantityMustFitOneConfirmation(t *testing.T) {
	f := setup(t, model.SessionOpen)
	ctx := context.Background()
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, f.tomato.ID)

	for _, qty := range []string{"18446744073709551617", "9223372036854775808", "501"} {
		_, err := f.env.UseCases.Item.Confirm(ctx, &dto.ConfirmInput{
			SessionID: f.session.ID, ItemID: it.ID, SupplierID: f.supplier.ID,
			Quantity: testutil.Dec(qty), UnitCost: testutil.Dec("6000"), UserID: "ana",
		})
		assert.True(t, apperror.IsValidation(err), "quantity %s: got %v", qty, err)
	}

	stored, err := f.env.UseCases.Lot.List(ctx, &lotDto.LotFilters{SessionID: f.session.ID})
	require.NoError(t, err)
	assert.Empty(t, stored)

	items, err := f.env.UseCases.Item.ListItems(ctx, f.session.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.ItemPending, items[0].State)
}

// closingRecomputer closes the session between the purchase commit and the repricing.
type closingRecomputer struct {
	env  *testutil.TestEnv
	next item.VariantRecomputer
}

func (c *closingRecomputer) RecomputePurchased(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	query := c.env.DB.Rebind(`UPDATE purchase_sessions SET status = ? WHERE id = ?`)
	if _, err := c.env.DB.ExecContext(ctx, query, model.SessionClosed, sessionID); err != nil {
		return nil, err
	}
	return c.next.RecomputePurchased(ctx, sessionID, variantID)
}

func TestConfirm_PricesPurchaseWhenSessionClosesMeanwhile(t *testing.T) {
	f := setup(t, model.SessionOpen)
	ctx := context.Background()
	testutil.SeedVariant(t, f.env.DB, "lettuce", "Lettuce", unit.Config{SaleUnit: unit.Piece, PurchaseUnit: unit.Piece})
	it := testutil.SeedItem(t, f.env.DB, f.session.ID, "lettuce")

	uc := itemUC.NewItemUseCase(
		itemRepo.NewPGRepository(f.env.DB),
		sessionRepo.NewPGRepository(f.env.DB),
		catalogRepo.NewPGRepository(f.env.DB),
		lotRepo.NewPGRepository(f.env.DB),
		&closingRecomputer{env: f.env, next: f.env.UseCases.Pricing},
		notify.NewNopPublisher(),
		logger.NewNopLogger(),
	)

	res, err := uc.Confirm(ctx, &dto.ConfirmInput{
		SessionID: f.session.ID, ItemID: it.ID, SupplierID: f.supplier.ID,
		Quantity: testutil.Dec("4"), UnitCost: testutil.Dec("700"), UserID: "ana",
	})
	require.NoError(t, err)
	require.NotNil(t, res.DailyPrice)
	assert.Equal(t, model.PriceReady, res.DailyPrice.Status)

	// 700 * 1.35 = 945 -> 950, stored on the closed session
	view, err := f.env.UseCases.Pricing.GetDailyPrice(ctx, f.session.ID, "lettuce")
	require.NoError(t, err)
	assert.True(t, view.SalePrice.Equal(testutil.Dec("950")), view.SalePrice.String())

	_, err = f.env.UseCases.Pricing.Recompute(ctx, f.session.ID, "lettuce")
	assert.True(t, apperror.IsConflict(err), "plain recomputes stay blocked on a closed session")
}
