package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, tier, name, period, price_cents, currency, active, created_at`

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (id, tier, name, period, price_cents, currency, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  tier        = EXCLUDED.tier,
  name        = EXCLUDED.name,
  period      = EXCLUDED.period,
  price_cents = EXCLUDED.price_cents,
  currency    = EXCLUDED.currency,
  active      = EXCLUDED.active;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Tier, p.Name, p.Period, p.PriceCents, p.Currency, p.Active, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) FindActiveByTier(ctx context.Context, tx repository.Tx, tier model.Tier) (*model.Plan, error) {
	const q = `
SELECT ` + planColumns + `
  FROM plans
 WHERE tier = $1 AND active
 ORDER BY created_at DESC
 LIMIT 1;
`
	row, err := pickRow(ctx, r.pool, tx, q, tier)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var p model.Plan
	err := row.Scan(&p.ID, &p.Tier, &p.Name, &p.Period, &p.PriceCents, &p.Currency, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}
