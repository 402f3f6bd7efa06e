package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_id, status, start_at, end_at, auto_renew, payment_method, amount_cents, currency, cancelled_at, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  end_at = EXCLUDED.end_at,
  cancelled_at = EXCLUDED.cancelled_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanID, s.Status, s.StartAt, s.EndAt, s.AutoRenew,
		s.PaymentMethod, s.AmountCents, s.Currency, s.CancelledAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `
SELECT id, user_id, plan_id, status, start_at, end_at, auto_renew, payment_method, amount_cents, currency, cancelled_at, created_at
  FROM subscriptions
 WHERE user_id = $1 AND status = 'active'
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("find active subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		var s model.Subscription
		err := rows.Scan(
			&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartAt, &s.EndAt, &s.AutoRenew,
			&s.PaymentMethod, &s.AmountCents, &s.Currency, &s.CancelledAt, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *subscriptionRepo) CancelActiveByUser(ctx context.Context, tx repository.Tx, userID string, at time.Time) (int, error) {
	const q = `
UPDATE subscriptions
   SET status = 'cancelled', cancelled_at = $2
 WHERE user_id = $1 AND status = 'active';
`
	ct, err := execSQL(ctx, r.pool, tx, q, userID, at)
	if err != nil {
		return 0, fmt.Errorf("cancel active subscriptions: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *subscriptionRepo) SaveHistory(ctx context.Context, tx repository.Tx, h *model.SubscriptionHistory) error {
	const q = `
INSERT INTO subscription_history (
  id, subscription_id, user_id, plan_id, status, start_at, end_at, payment_method, amount_cents, currency, recorded_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		h.ID, h.SubscriptionID, h.UserID, h.PlanID, h.Status, h.StartAt, h.EndAt,
		h.PaymentMethod, h.AmountCents, h.Currency, h.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("save subscription history: %w", err)
	}
	return nil
}
