package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/jmoiron/sqlx"
)

const variantColumns = `id, product_id, variant_name, sale_unit, purchase_unit, conversion_factor, is_active, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	query := r.DB.Rebind(`SELECT ` + variantColumns + ` FROM product_variants WHERE id = ?`)
	if err := r.DB.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) GetVariantsByIDs(ctx context.Context, ids []string) ([]model.ProductVariant, error) {
	if len(ids) == 0 {
		return []model.ProductVariant{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+variantColumns+` FROM product_variants WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.ProductVariant
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	var s model.Supplier
	query := r.DB.Rebind(`SELECT id, nickname, is_active FROM suppliers WHERE id = ?`)
	if err := r.DB.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) UpdateUnitConfig(ctx context.Context, variantID string, cfg unit.Config, at time.Time) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE product_variants
        SET sale_unit = ?, purchase_unit = ?, conversion_factor = ?, updated_at = ?
        WHERE id = ?
    `)
	res, err := r.DB.ExecContext(ctx, query, cfg.SaleUnit, cfg.PurchaseUnit, cfg.ConversionFactor, at, variantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
