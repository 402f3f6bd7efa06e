package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Keeping the handle opaque keeps use-case interfaces clean: repositories
// accept the same `tx` argument and detect the concrete type (pgx.Tx for
// Postgres) on the implementation side. Repositories MUST gracefully accept a
// nil tx and fall back to the pool (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
