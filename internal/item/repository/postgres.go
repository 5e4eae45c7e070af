package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/item/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, session_id, variant_id, origin, planned_quantity, reference_price,
    reference_purchase_unit, state, reserved_by, reservation_expires_at, created_at, updated_at`

// sessionIs guards a statement on the owning session's status.
const sessionIs = `EXISTS (SELECT 1 FROM purchase_sessions s WHERE s.id = session_items.session_id AND s.status = ?)`

// sessionNotClosed matches rows whose session is PLANNING or OPEN.
const sessionNotClosed = `EXISTS (SELECT 1 FROM purchase_sessions s WHERE s.id = session_items.session_id AND s.status IN (?, ?))`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, it *model.SessionItem) error {
	query := `
        INSERT INTO session_items (
            id, session_id, variant_id, origin, planned_quantity, reference_price,
            reference_purchase_unit, state, reserved_by, reservation_expires_at, created_at, updated_at
        )
        VALUES (
            :id, :session_id, :variant_id, :origin, :planned_quantity, :reference_price,
            :reference_purchase_unit, :state, :reserved_by, :reservation_expires_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, it)
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, sessionID, itemID string) (*model.SessionItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM session_items WHERE id = ? AND session_id = ?`, itemID, sessionID)
}

func (r *PGRepository) GetBySessionVariant(ctx context.Context, sessionID, variantID string) (*model.SessionItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM session_items WHERE session_id = ? AND variant_id = ?`, sessionID, variantID)
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.SessionItem, error) {
	var it model.SessionItem
	if err := r.DB.GetContext(ctx, &it, r.DB.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *PGRepository) FindBySession(ctx context.Context, sessionID string) ([]model.SessionItem, error) {
	items := []model.SessionItem{}
	query := r.DB.Rebind(`SELECT ` + itemColumns + ` FROM session_items WHERE session_id = ? ORDER BY created_at ASC, id ASC`)
	err := r.DB.SelectContext(ctx, &items, query, sessionID)
	return items, err
}

func (r *PGRepository) DeletePlanned(ctx context.Context, sessionID, itemID string) (bool, error) {
	query := r.DB.Rebind(`
        DELETE FROM session_items
        WHERE id = ? AND session_id = ? AND origin = ? AND state = ? AND ` + sessionIs)
	return affected(r.DB.ExecContext(ctx, query, itemID, sessionID, model.OriginPlanned, model.ItemPending, model.SessionPlanning))
}

func (r *PGRepository) UpdatePlan(ctx context.Context, in *dto.UpdatePlanInput, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE session_items
        SET planned_quantity = ?, reference_price = ?, reference_purchase_unit = ?, updated_at = ?
        WHERE id = ? AND session_id = ? AND origin = ? AND state = ? AND ` + sessionIs)
	return affected(r.DB.ExecContext(ctx, query,
		in.PlannedQuantity, in.ReferencePrice, in.ReferencePurchaseUnit, at,
		in.ItemID, in.SessionID, model.OriginPlanned, model.ItemPending, model.SessionPlanning,
	))
}

// Reserve is the compare-and-set every buyer races on: it only matches a PENDING row or a
// RESERVED row whose hold has lapsed, in an OPEN session.
func (r *PGRepository) Reserve(ctx context.Context, sessionID, itemID, actor string, expiresAt, now time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE session_items
        SET state = ?, reserved_by = ?, reservation_expires_at = ?, updated_at = ?
        WHERE id = ? AND session_id = ?
          AND (state = ? OR (state = ? AND reservation_expires_at <= ?))
          AND ` + sessionIs)
	return affected(r.DB.ExecContext(ctx, query,
		model.ItemReserved, actor, expiresAt, now,
		itemID, sessionID,
		model.ItemPending, model.ItemReserved, now,
		model.SessionOpen,
	))
}

func (r *PGRepository) Release(ctx context.Context, sessionID, itemID string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE session_items
        SET state = ?, reserved_by = NULL, reservation_expires_at = NULL, updated_at = ?
        WHERE id = ? AND session_id = ? AND state = ?
          AND ` + sessionNotClosed)
	return affected(r.DB.ExecContext(ctx, query,
		model.ItemPending, at,
		itemID, sessionID, model.ItemReserved,
		model.SessionPlanning, model.SessionOpen,
	))
}

func (r *PGRepository) Cancel(ctx context.Context, sessionID, itemID string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE session_items
        SET state = ?, reserved_by = NULL, reservation_expires_at = NULL, updated_at = ?
        WHERE id = ? AND session_id = ? AND state IN (?, ?)
          AND ` + sessionNotClosed)
	return affected(r.DB.ExecContext(ctx, query,
		model.ItemCancelled, at,
		itemID, sessionID, model.ItemPending, model.ItemReserved,
		model.SessionPlanning, model.SessionOpen,
	))
}

func (r *PGRepository) ConfirmPurchase(ctx context.Context, sessionID, itemID string, lots []model.PurchaseLot, at time.Time) (bool, error) {
	if len(lots) == 0 {
		return false, errors.New("confirm purchase without lots")
	}
	buyer := lots[0].PurchasedBy

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// 1. Claim the item. A hold by another buyer that has not lapsed blocks the purchase.
	claim := tx.Rebind(`
        UPDATE session_items
        SET state = ?, reserved_by = NULL, reservation_expires_at = NULL, updated_at = ?
        WHERE id = ? AND session_id = ?
          AND (state = ? OR (state = ? AND (reserved_by = ? OR reservation_expires_at <= ?)))
          AND ` + sessionIs)
	ok, err := affected(tx.ExecContext(ctx, claim,
		model.ItemPurchased, at,
		itemID, sessionID,
		model.ItemPending, model.ItemReserved, buyer, at,
		model.SessionOpen,
	))
	if err != nil || !ok {
		return false, err
	}

	// 2. Append lots
	insert := `
        INSERT INTO purchase_lots (
            id, session_id, variant_id, supplier_id, quantity, unit_cost, purchase_unit,
            measured_weight, weighed_at, purchased_by, purchased_at, created_at
        )
        VALUES (
            :id, :session_id, :variant_id, :supplier_id, :quantity, :unit_cost, :purchase_unit,
            :measured_weight, :weighed_at, :purchased_by, :purchased_at, :created_at
        )
    `
	for i := range lots {
		if _, err := tx.NamedExecContext(ctx, insert, &lots[i]); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
