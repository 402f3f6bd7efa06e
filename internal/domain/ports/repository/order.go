package repository

import (
	"context"
	"time"

	"wordmate-subscription/internal/domain/model"
)

// OrderRepository is the port for payment orders.
type OrderRepository interface {
	// Save inserts or updates an order.
	Save(ctx context.Context, tx Tx, o *model.Order) error
	// FindByID returns the order or domain.ErrNotFound.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	// MarkPaid atomically transitions pending -> paid, attaching the code and
	// paid timestamp. Returns false when the order was not pending (the
	// conditional update matched no row).
	MarkPaid(ctx context.Context, tx Tx, id, code string, paidAt time.Time) (bool, error)
	// MarkCancelled atomically transitions pending -> cancelled. Returns false
	// when the order was not pending.
	MarkCancelled(ctx context.Context, tx Tx, id string) (bool, error)
	// List returns orders newest-first, optionally filtered by status
	// (empty status = all).
	List(ctx context.Context, tx Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error)
	// ExpirePendingBefore transitions pending orders created before the cutoff
	// to expired and returns how many rows changed.
	ExpirePendingBefore(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}
