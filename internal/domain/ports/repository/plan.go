package repository

import (
	"context"

	"wordmate-subscription/internal/domain/model"
)

// PlanRepository is the port for the plan catalog.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	// FindActiveByTier returns the active catalog row for a tier, or
	// domain.ErrNotFound when the catalog is missing one (an operator error).
	FindActiveByTier(ctx context.Context, tx Tx, tier model.Tier) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
