package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetNumber(ctx context.Context, key string) (*decimal.Decimal, error) {
	var v decimal.Decimal
	query := r.DB.Rebind(`SELECT value_number FROM app_settings WHERE setting_key = ?`)
	if err := r.DB.GetContext(ctx, &v, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) SetNumber(ctx context.Context, key string, value decimal.Decimal, at time.Time) error {
	query := r.DB.Rebind(`
        INSERT INTO app_settings (setting_key, value_number, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (setting_key) DO UPDATE SET
            value_number = EXCLUDED.value_number,
            updated_at = EXCLUDED.updated_at
    `)
	_, err := r.DB.ExecContext(ctx, query, key, value, at)
	return err
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.AppSetting, error) {
	var items []model.AppSetting
	err := r.DB.SelectContext(ctx, &items, `SELECT setting_key, value_number, updated_at FROM app_settings ORDER BY setting_key`)
	return items, err
}
