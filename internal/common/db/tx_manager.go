package db

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run unchanged inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(context.Context, Querier) error) error
}

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PgTxManager struct {
	pool  txBeginner
	log   *logger.Logger
	retry RetryConfig
}

func NewPgTxManager(pool txBeginner, log *logger.Logger) *PgTxManager {
	return &PgTxManager{
		pool:  pool,
		log:   log,
		retry: DefaultRetryConfig,
	}
}

// WithTx reruns fn in a fresh transaction on serialization, deadlock and connection failures, so fn must not keep state between attempts.
func (m *PgTxManager) WithTx(ctx context.Context, fn func(context.Context, Querier) error) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	return RetryWithBackoff(ctx, m.log, m.retry, func(ctx context.Context) error {
		return m.runTx(ctx, fn)
	})
}

func (m *PgTxManager) runTx(ctx context.Context, fn func(context.Context, Querier) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(ctx, tx)
	return err
}
