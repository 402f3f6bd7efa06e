package repository

import (
	"context"
	"time"

	"wordmate-subscription/internal/domain/model"
)

// CodeRepository is the port for redemption codes.
type CodeRepository interface {
	// Save inserts a new code.
	Save(ctx context.Context, tx Tx, code *model.RedemptionCode) error
	// FindByCode returns the code in any status, or domain.ErrNotFound. The
	// lookup is an exact match against the canonical hyphenated form.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.RedemptionCode, error)
	// MarkUsed atomically transitions unused -> used, stamping the consuming
	// user and time. Returns false when the code was no longer unused; this is
	// the compare-and-swap that guarantees at-most-once redemption.
	MarkUsed(ctx context.Context, tx Tx, code, userID string, usedAt time.Time) (bool, error)
	// MarkExpired transitions unused -> expired (lazy expiry on a failed
	// redemption attempt).
	MarkExpired(ctx context.Context, tx Tx, code string) error
	// ExpireOverdue sweeps unused codes whose expiry has passed and returns
	// how many rows changed.
	ExpireOverdue(ctx context.Context, tx Tx, now time.Time) (int, error)
}
