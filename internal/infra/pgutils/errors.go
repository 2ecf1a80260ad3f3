package pgutils

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStorageUnavailable is returned once transient failures exhaust the retry budget.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageFatal marks configuration failures a retry cannot fix, such as
	// an unresolvable database host. The process should exit and be restarted.
	ErrStorageFatal = errors.New("storage fatal")
)

// Class is the retry classification of a storage error.
type Class int

const (
	ClassNone Class = iota
	// ClassPermanent errors are returned as-is: business failures, bad SQL,
	// constraint violations, cancellation.
	ClassPermanent
	ClassTransient
	ClassFatal
	// ClassAmbiguous is a failed commit that may have been applied.
	ClassAmbiguous
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	case ClassAmbiguous:
		return "ambiguous"
	default:
		return "permanent"
	}
}

// Postgres SQLSTATEs worth another attempt.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
}

// Classify decides how a storage error is handled by Retry.
//
//nolint:cyclop
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	if errors.Is(err, errCommitAmbiguous) {
		return ClassAmbiguous
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassPermanent
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTemporary || dnsErr.IsTimeout {
			return ClassTransient
		}

		return ClassFatal
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientCodes[pgErr.Code] || len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return ClassTransient
		}

		return ClassPermanent
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return ClassTransient
	}

	if pgconn.SafeToRetry(err) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}

	return ClassPermanent
}

// IsUniqueViolation reports a 23505 error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsNumericOverflow reports a 22003 error, e.g. a bigint balance that would
// wrap.
func IsNumericOverflow(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}
