package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// errCommitAmbiguous marks a commit whose outcome is unknown: the connection
// failed after COMMIT may have reached the server.
var errCommitAmbiguous = errors.New("commit outcome unknown")

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("rollback after fn error: %w (fn err: %w)", rbErr, err)
		}

		return err
	}

	err = tx.Commit()
	if err != nil {
		return commitError(err)
	}

	return nil
}

// commitError keeps server-side rejections (serialization failures and the
// like, which roll back) retryable and tags everything else as ambiguous.
func commitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("commit tx: %w", err)
	}

	return fmt.Errorf("commit tx: %w: %w", errCommitAmbiguous, err)
}

// WithTxRetry runs WithTx under p, re-running the whole transaction when it
// fails transiently. fn must be safe to repeat: nothing it did survives a
// rolled back attempt. A commit with an unknown outcome is never re-run.
func WithTxRetry(ctx context.Context, db *sql.DB, p RetryPolicy, fn func(*sql.Tx) error) error {
	return Retry(ctx, p, "tx", func(ctx context.Context) error {
		return WithTx(ctx, db, fn)
	})
}
