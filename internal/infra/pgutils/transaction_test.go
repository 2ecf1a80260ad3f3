package pgutils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// commitFailConnector opens connections whose transactions fail to commit
// with commitErr.
type commitFailConnector struct {
	commitErr error
}

func (c commitFailConnector) Connect(context.Context) (driver.Conn, error) {
	return commitFailConn(c), nil
}

func (c commitFailConnector) Driver() driver.Driver { return commitFailDriver(c) }

type commitFailDriver struct {
	commitErr error
}

func (d commitFailDriver) Open(string) (driver.Conn, error) { return commitFailConn(d), nil }

type commitFailConn struct {
	commitErr error
}

func (commitFailConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}

func (commitFailConn) Close() error { return nil }

func (c commitFailConn) Begin() (driver.Tx, error) { return commitFailTx(c), nil }

type commitFailTx struct {
	commitErr error
}

func (tx commitFailTx) Commit() error { return tx.commitErr }

func (commitFailTx) Rollback() error { return nil }

func TestWithTxRetry_CommitFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		commitErr error
		wantRuns  int
		wantClass Class
	}{
		{name: "connection_lost", commitErr: io.ErrUnexpectedEOF, wantRuns: 1, wantClass: ClassAmbiguous},
		{name: "bad_conn", commitErr: driver.ErrBadConn, wantRuns: 1, wantClass: ClassAmbiguous},
		{name: "serialization_failure", commitErr: &pgconn.PgError{Code: "40001"}, wantRuns: 3, wantClass: ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := sql.OpenDB(commitFailConnector{commitErr: tt.commitErr})
			defer db.Close()

			runs := 0
			err := WithTxRetry(t.Context(), db, RetryPolicy{Attempts: 3, Sleep: noSleep}, func(*sql.Tx) error {
				runs++

				return nil
			})
			if !errors.Is(err, ErrStorageUnavailable) {
				t.Fatalf("want ErrStorageUnavailable, got %v", err)
			}

			if !errors.Is(err, tt.commitErr) {
				t.Fatalf("commit error should stay reachable, got %v", err)
			}

			if runs != tt.wantRuns {
				t.Fatalf("want %d runs of the body, got %d", tt.wantRuns, runs)
			}

			got := Classify(WithTx(t.Context(), db, func(*sql.Tx) error { return nil }))
			if got != tt.wantClass {
				t.Fatalf("want %s, got %s", tt.wantClass, got)
			}
		})
	}
}
