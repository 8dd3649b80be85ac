package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
)

// ErrTxNotConfigured indicates the transaction runner has no pool or queries.
var ErrTxNotConfigured = errors.New("repo: transaction runner not configured")

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxRunner executes sqlc queries inside a single database transaction.
type TxRunner struct {
	DB      Beginner
	Queries *dbgen.Queries
	Options pgx.TxOptions
}

// WithTx begins a transaction, runs fn with tx-bound queries and commits when fn
// returns nil. Any error from fn or from commit leaves nothing persisted.
func (r TxRunner) WithTx(ctx context.Context, fn func(q *dbgen.Queries) error) error {
	if r.DB == nil || r.Queries == nil {
		return ErrTxNotConfigured
	}
	tx, err := r.DB.BeginTx(ctx, r.Options)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(r.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
