package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) *codeRepo {
	return &codeRepo{pool: pool}
}

func (r *codeRepo) Save(ctx context.Context, tx repository.Tx, c *model.RedemptionCode) error {
	const q = `
INSERT INTO redemption_codes (id, code, order_id, email, plan_name, period, status, expires_at, created_at, used_at, used_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.OrderID, c.Email, c.PlanName, c.Period, c.Status,
		c.ExpiresAt, c.CreatedAt, c.UsedAt, c.UsedBy,
	)
	if err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

func (r *codeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.RedemptionCode, error) {
	const q = `
SELECT id, code, order_id, email, plan_name, period, status, expires_at, created_at, used_at, used_by
  FROM redemption_codes
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	var c model.RedemptionCode
	err = row.Scan(
		&c.ID, &c.Code, &c.OrderID, &c.Email, &c.PlanName, &c.Period, &c.Status,
		&c.ExpiresAt, &c.CreatedAt, &c.UsedAt, &c.UsedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

// MarkUsed is the compare-and-swap at the heart of at-most-once redemption:
// the row only changes when it is still unused.
func (r *codeRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, usedAt time.Time) (bool, error) {
	const q = `
UPDATE redemption_codes
   SET status = 'used', used_at = $2, used_by = $3
 WHERE code = $1 AND status = 'unused';
`
	ct, err := execSQL(ctx, r.pool, tx, q, code, usedAt, userID)
	if err != nil {
		return false, fmt.Errorf("mark code used: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *codeRepo) MarkExpired(ctx context.Context, tx repository.Tx, code string) error {
	const q = `
UPDATE redemption_codes
   SET status = 'expired'
 WHERE code = $1 AND status = 'unused';
`
	if _, err := execSQL(ctx, r.pool, tx, q, code); err != nil {
		return fmt.Errorf("mark code expired: %w", err)
	}
	return nil
}

func (r *codeRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE redemption_codes
   SET status = 'expired'
 WHERE status = 'unused' AND expires_at IS NOT NULL AND expires_at < $1;
`
	ct, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, fmt.Errorf("expire overdue codes: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
