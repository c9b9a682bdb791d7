package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation      = "23505"
	codeInvalidTextRep       = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

type txKey struct{}

// db is shared by the repositories: it owns the pool and the transaction
// settings, and routes statements to the transaction carried in ctx.
type db struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

type Option func(*db)

// WithLockTimeout bounds how long a statement inside a transaction waits for
// a row lock before failing with domain.ErrConcurrencyTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(d2 *db) {
		if d >= 0 {
			d2.lockTimeout = d
		}
	}
}

func newDB(pool *pgxpool.Pool, opts []Option) db {
	d := db{pool: pool, lockTimeout: 2 * time.Second}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithTx runs fn in a serializable transaction. Nested calls reuse the
// outer transaction.
func (d db) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}

	if d.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", d.lockTimeout.Milliseconds())); err != nil {
			_ = tx.Rollback(ctx)
			return classify(fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func (d db) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return d.pool.Exec(ctx, sql, args...)
}

func (d db) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return d.pool.QueryRow(ctx, sql, args...)
}

func (d db) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return d.pool.Query(ctx, sql, args...)
}

// classify maps driver failures that mean "try again" onto the domain's
// concurrency errors. Everything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConcurrencyConflict) || errors.Is(err, domain.ErrConcurrencyTimeout) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrConcurrencyConflict, err)
		case codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%w: %w", domain.ErrConcurrencyTimeout, err)
		}
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrConcurrencyTimeout, err)
	}
	return err
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func isInvalidUUID(err error) bool {
	return hasCode(err, codeInvalidTextRep)
}
