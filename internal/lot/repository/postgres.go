package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const lotColumns = `id, session_id, variant_id, supplier_id, quantity, unit_cost, purchase_unit,
    measured_weight, weighed_at, purchased_by, purchased_at, created_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.PurchaseLot, error) {
	var l model.PurchaseLot
	query := r.DB.Rebind(`SELECT ` + lotColumns + ` FROM purchase_lots WHERE id = ?`)
	if err := r.DB.GetContext(ctx, &l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.LotFilters) ([]model.PurchaseLot, error) {
	items := []model.PurchaseLot{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.SessionID != "" {
		conditions = append(conditions, "session_id = :session_id")
		args["session_id"] = f.SessionID
	}
	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + lotColumns + " FROM purchase_lots" + whereClause + " ORDER BY purchased_at ASC, id ASC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, err
}

func (r *PGRepository) DistinctVariants(ctx context.Context, sessionID string) ([]string, error) {
	ids := []string{}
	query := r.DB.Rebind(`SELECT DISTINCT variant_id FROM purchase_lots WHERE session_id = ? ORDER BY variant_id`)
	err := r.DB.SelectContext(ctx, &ids, query, sessionID)
	return ids, err
}

func (r *PGRepository) FindActiveSessionsWithVariant(ctx context.Context, variantID string) ([]string, error) {
	ids := []string{}
	query := r.DB.Rebind(`
        SELECT DISTINCT l.session_id
        FROM purchase_lots l
        JOIN purchase_sessions s ON s.id = l.session_id
        WHERE l.variant_id = ? AND s.status <> ?
        ORDER BY l.session_id
    `)
	err := r.DB.SelectContext(ctx, &ids, query, variantID, model.SessionClosed)
	return ids, err
}

func (r *PGRepository) FindLastByVariant(ctx context.Context, variantID string) (*model.PurchaseLot, error) {
	var l model.PurchaseLot
	query := r.DB.Rebind(`SELECT ` + lotColumns + ` FROM purchase_lots WHERE variant_id = ? ORDER BY purchased_at DESC, id DESC LIMIT 1`)
	if err := r.DB.GetContext(ctx, &l, query, variantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) SetWeight(ctx context.Context, id string, weight decimal.Decimal, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE purchase_lots
        SET measured_weight = ?, weighed_at = ?
        WHERE id = ? AND measured_weight IS NULL
    `)
	res, err := r.DB.ExecContext(ctx, query, weight, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
