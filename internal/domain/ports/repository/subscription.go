package repository

import (
	"context"
	"time"

	"wordmate-subscription/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions and their
// append-only history.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	// FindActiveByUser returns all currently active subscriptions of a user.
	// Under the single-active invariant the slice has at most one element, but
	// the engine tolerates drift from before the invariant was enforced.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	// CancelActiveByUser cancels every active subscription of the user in one
	// statement, stamping the cancel time. Returns the number of rows changed.
	CancelActiveByUser(ctx context.Context, tx Tx, userID string, at time.Time) (int, error)
	// SaveHistory appends an audit row. History rows are never updated.
	SaveHistory(ctx context.Context, tx Tx, h *model.SubscriptionHistory) error
}
