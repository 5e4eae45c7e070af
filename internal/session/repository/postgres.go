package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const sessionColumns = `id, date_key, status, planned_budget, created_by, opened_at, closed_at, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.PurchaseSession) error {
	query := `
        INSERT INTO purchase_sessions (
            id, date_key, status, planned_budget, created_by,
            opened_at, closed_at, created_at, updated_at
        )
        VALUES (
            :id, :date_key, :status, :planned_budget, :created_by,
            :opened_at, :closed_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.PurchaseSession, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE id = ?`, id)
}

func (r *PGRepository) GetByDateKey(ctx context.Context, dateKey string) (*model.PurchaseSession, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE date_key = ?`, dateKey)
}

func (r *PGRepository) FindLatest(ctx context.Context, status model.SessionStatus) (*model.PurchaseSession, error) {
	if status == "" {
		return r.getOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions ORDER BY date_key DESC LIMIT 1`)
	}
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM purchase_sessions WHERE status = ? ORDER BY date_key DESC LIMIT 1`, status)
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.PurchaseSession, error) {
	var s model.PurchaseSession
	err := r.DB.GetContext(ctx, &s, r.DB.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SessionFilters) ([]model.PurchaseSession, error) {
	items := []model.PurchaseSession{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.From != "" {
		conditions = append(conditions, "date_key >= :date_from")
		args["date_from"] = f.From
	}
	if f.To != "" {
		conditions = append(conditions, "date_key <= :date_to")
		args["date_to"] = f.To
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + sessionColumns + " FROM purchase_sessions" + whereClause + " ORDER BY date_key DESC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, err
}

func (r *PGRepository) UpdateDate(ctx context.Context, id, dateKey string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`UPDATE purchase_sessions SET date_key = ?, updated_at = ? WHERE id = ? AND status = ?`)
	return affected(r.DB.ExecContext(ctx, query, dateKey, at, id, model.SessionPlanning))
}

func (r *PGRepository) UpdateBudget(ctx context.Context, id string, budget *decimal.Decimal, at time.Time) (bool, error) {
	query := r.DB.Rebind(`UPDATE purchase_sessions SET planned_budget = ?, updated_at = ? WHERE id = ? AND status = ?`)
	return affected(r.DB.ExecContext(ctx, query, budget, at, id, model.SessionPlanning))
}

func (r *PGRepository) TransitionStatus(ctx context.Context, id string, from, to model.SessionStatus, at time.Time) (bool, error) {
	stamp := ""
	switch to {
	case model.SessionOpen:
		stamp = ", opened_at = ?"
	case model.SessionClosed:
		stamp = ", closed_at = ?"
	}

	args := []interface{}{to, at}
	if stamp != "" {
		args = append(args, at)
	}
	args = append(args, id, from)

	query := r.DB.Rebind(`UPDATE purchase_sessions SET status = ?, updated_at = ?` + stamp + ` WHERE id = ? AND status = ?`)
	return affected(r.DB.ExecContext(ctx, query, args...))
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
