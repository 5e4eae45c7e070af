package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const priceColumns = `id, session_id, variant_id, sale_unit, normalized_cost, margin_pct, sale_price,
    pricing_mode, manual_price, manual_set_by, manual_set_at, manual_note, status, anchor_lot_id,
    created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetBySessionVariant(ctx context.Context, sessionID, variantID string) (*model.DailyPrice, error) {
	var dp model.DailyPrice
	query := r.DB.Rebind(`SELECT ` + priceColumns + ` FROM daily_prices WHERE session_id = ? AND variant_id = ?`)
	if err := r.DB.GetContext(ctx, &dp, query, sessionID, variantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &dp, nil
}

func (r *PGRepository) FindBySession(ctx context.Context, f *dto.DailyPriceFilters) ([]model.DailyPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM daily_prices WHERE session_id = ?`
	args := []interface{}{f.SessionID}

	if f.OnlyReady {
		query += ` AND status = ? AND sale_price IS NOT NULL`
		args = append(args, model.PriceReady)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status IN (?)`
		args = append(args, f.Statuses)
	}
	query += ` ORDER BY variant_id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	items := []model.DailyPrice{}
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) UpsertAuto(ctx context.Context, dp *model.DailyPrice) (bool, error) {
	query := `
        INSERT INTO daily_prices (
            id, session_id, variant_id, sale_unit, normalized_cost, margin_pct, sale_price,
            pricing_mode, manual_note, status, anchor_lot_id, created_at, updated_at
        )
        VALUES (
            :id, :session_id, :variant_id, :sale_unit, :normalized_cost, :margin_pct, :sale_price,
            'AUTO', '', :status, :anchor_lot_id, :created_at, :updated_at
        )
        ON CONFLICT (session_id, variant_id)
        DO UPDATE SET
            sale_unit = EXCLUDED.sale_unit,
            normalized_cost = EXCLUDED.normalized_cost,
            margin_pct = EXCLUDED.margin_pct,
            sale_price = EXCLUDED.sale_price,
            pricing_mode = 'AUTO',
            status = EXCLUDED.status,
            anchor_lot_id = EXCLUDED.anchor_lot_id,
            updated_at = EXCLUDED.updated_at
        WHERE daily_prices.pricing_mode = 'AUTO' OR daily_prices.manual_price IS NULL
    `
	res, err := r.DB.NamedExecContext(ctx, query, dp)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) ReassertManual(ctx context.Context, sessionID, variantID string, margin decimal.Decimal, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE daily_prices
        SET sale_price = manual_price, status = ?, margin_pct = ?, updated_at = ?
        WHERE session_id = ? AND variant_id = ? AND pricing_mode = ? AND manual_price IS NOT NULL
    `)
	res, err := r.DB.ExecContext(ctx, query, model.PriceReady, margin, at, sessionID, variantID, model.PricingManual)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) UpsertManual(ctx context.Context, dp *model.DailyPrice) error {
	query := `
        INSERT INTO daily_prices (
            id, session_id, variant_id, sale_unit, margin_pct, sale_price, pricing_mode,
            manual_price, manual_set_by, manual_set_at, manual_note, status, created_at, updated_at
        )
        VALUES (
            :id, :session_id, :variant_id, :sale_unit, :margin_pct, :sale_price, 'MANUAL',
            :manual_price, :manual_set_by, :manual_set_at, :manual_note, 'READY', :created_at, :updated_at
        )
        ON CONFLICT (session_id, variant_id)
        DO UPDATE SET
            sale_price = EXCLUDED.sale_price,
            pricing_mode = 'MANUAL',
            manual_price = EXCLUDED.manual_price,
            manual_set_by = EXCLUDED.manual_set_by,
            manual_set_at = EXCLUDED.manual_set_at,
            manual_note = EXCLUDED.manual_note,
            status = 'READY',
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, dp)
	return err
}

func (r *PGRepository) ClearManual(ctx context.Context, sessionID, variantID string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE daily_prices
        SET pricing_mode = ?, manual_price = NULL, manual_set_by = NULL, manual_set_at = NULL,
            manual_note = '', updated_at = ?
        WHERE session_id = ? AND variant_id = ? AND pricing_mode = ?
    `)
	res, err := r.DB.ExecContext(ctx, query, model.PricingAuto, at, sessionID, variantID, model.PricingManual)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) FindPreviousReady(ctx context.Context, variantID, beforeDateKey string) (*model.PreviousPrice, error) {
	var prev model.PreviousPrice
	query := r.DB.Rebind(`
        SELECT s.date_key, dp.sale_price
        FROM daily_prices dp
        JOIN purchase_sessions s ON s.id = dp.session_id
        WHERE dp.variant_id = ? AND s.date_key < ? AND dp.status = ? AND dp.sale_price IS NOT NULL
        ORDER BY s.date_key DESC
        LIMIT 1
    `)
	if err := r.DB.GetContext(ctx, &prev, query, variantID, beforeDateKey, model.PriceReady); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &prev, nil
}

func (r *PGRepository) FindLastManualPrice(ctx context.Context, variantID, excludeSessionID string) (*decimal.Decimal, error) {
	var price decimal.Decimal
	query := r.DB.Rebind(`
        SELECT dp.manual_price
        FROM daily_prices dp
        JOIN purchase_sessions s ON s.id = dp.session_id
        WHERE dp.variant_id = ? AND dp.session_id <> ? AND dp.manual_price IS NOT NULL
        ORDER BY s.date_key DESC
        LIMIT 1
    `)
	if err := r.DB.GetContext(ctx, &price, query, variantID, excludeSessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}
