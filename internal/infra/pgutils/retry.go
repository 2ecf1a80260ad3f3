package pgutils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/fastprodman/scraps/internal/config"
)

// RetryPolicy is a bounded, fixed-backoff retry budget.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration

	// Sleep waits between attempts; nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PolicyFrom builds the retry policy configured for postgres.
func PolicyFrom(cfg config.PostgresConfig) RetryPolicy {
	return RetryPolicy{Attempts: cfg.ConnectAttempts, Delay: cfg.ConnectDelay}
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}

	return p.Attempts
}

func (p RetryPolicy) sleep(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}

	t := time.NewTimer(p.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn until it succeeds, fails with a non-transient error, or the
// budget runs out. Fatal errors short-circuit and wrap ErrStorageFatal;
// ambiguous commits and exhausted budgets wrap ErrStorageUnavailable.
func Retry(ctx context.Context, p RetryPolicy, op string, fn func(context.Context) error) error {
	var attemptErrs *multierror.Error

	n := p.attempts()
	for attempt := 1; attempt <= n; attempt++ {
		err := fn(ctx)

		switch Classify(err) {
		case ClassNone:
			return nil
		case ClassFatal:
			return fmt.Errorf("%s: %w: %w", op, ErrStorageFatal, err)
		case ClassAmbiguous:
			slog.Error("commit outcome unknown, not retrying", "op", op, "attempt", attempt, "error", err)

			return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
		case ClassTransient:
			attemptErrs = multierror.Append(attemptErrs, err)

			slog.Warn("transient storage error",
				"op", op, "attempt", attempt, "max_attempts", n, "error", err)

			if attempt == n {
				break
			}

			serr := p.sleep(ctx)
			if serr != nil {
				return fmt.Errorf("%s: wait before retry: %w", op, serr)
			}
		default:
			return err
		}
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", op, ErrStorageUnavailable, n, attemptErrs.ErrorOrNil())
}
