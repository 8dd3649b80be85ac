package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/repo"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestTxRunnerCommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	runner := repo.TxRunner{DB: &fakeBeginner{tx: tx}, Queries: dbgen.New(nil)}

	called := false
	err := runner.WithTx(context.Background(), func(q *dbgen.Queries) error {
		called = true
		require.NotNil(t, q)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
	require.True(t, tx.committed)
	require.False(t, tx.rolledBack)
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	runner := repo.TxRunner{DB: &fakeBeginner{tx: tx}, Queries: dbgen.New(nil)}

	boom := errors.New("boom")
	err := runner.WithTx(context.Background(), func(*dbgen.Queries) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, tx.committed)
	require.True(t, tx.rolledBack)
}

func TestTxRunnerReportsCommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	runner := repo.TxRunner{DB: &fakeBeginner{tx: tx}, Queries: dbgen.New(nil)}

	err := runner.WithTx(context.Background(), func(*dbgen.Queries) error { return nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "commit tx")
	require.True(t, tx.rolledBack)
}

func TestTxRunnerBeginFailure(t *testing.T) {
	runner := repo.TxRunner{DB: &fakeBeginner{err: errors.New("pool closed")}, Queries: dbgen.New(nil)}
	err := runner.WithTx(context.Background(), func(*dbgen.Queries) error {
		t.Fatal("callback must not run")
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "begin tx")
}

func TestTxRunnerRequiresConfiguration(t *testing.T) {
	err := repo.TxRunner{}.WithTx(context.Background(), func(*dbgen.Queries) error { return nil })
	require.ErrorIs(t, err, repo.ErrTxNotConfigured)
}
