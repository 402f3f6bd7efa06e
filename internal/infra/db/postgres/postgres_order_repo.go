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
var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, email, plan_id, plan_name, period, amount_cents, currency, payment_method, status, created_at, paid_at, redemption_code`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (id, email, plan_id, plan_name, period, amount_cents, currency, payment_method, status, created_at, paid_at, redemption_code)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  paid_at = EXCLUDED.paid_at,
  redemption_code = EXCLUDED.redemption_code;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.Email, o.PlanID, o.PlanName, o.Period, o.AmountCents, o.Currency,
		o.PaymentMethod, o.Status, o.CreatedAt, o.PaidAt, o.RedemptionCode,
	)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) MarkPaid(ctx context.Context, tx repository.Tx, id, code string, paidAt time.Time) (bool, error) {
	const q = `
UPDATE orders
   SET status = 'paid', paid_at = $2, redemption_code = $3
 WHERE id = $1 AND status = 'pending';
`
	ct, err := execSQL(ctx, r.pool, tx, q, id, paidAt, code)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *orderRepo) MarkCancelled(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
UPDATE orders
   SET status = 'cancelled'
 WHERE id = $1 AND status = 'pending';
`
	ct, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, fmt.Errorf("mark order cancelled: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *orderRepo) List(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		const q = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
		rows, err = queryRows(ctx, r.pool, tx, q, offset, limit)
	} else {
		const q = `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
		rows, err = queryRows(ctx, r.pool, tx, q, status, offset, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orderRepo) ExpirePendingBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `
UPDATE orders
   SET status = 'expired'
 WHERE status = 'pending' AND created_at < $1;
`
	ct, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire pending orders: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Email, &o.PlanID, &o.PlanName, &o.Period, &o.AmountCents, &o.Currency,
		&o.PaymentMethod, &o.Status, &o.CreatedAt, &o.PaidAt, &o.RedemptionCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &o, nil
}
