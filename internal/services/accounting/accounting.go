// Package accounting mutates balances and writes the matching ledger entries
// in one storage transaction.
//
// Every operation follows the same shape inside pgutils.WithTxRetry:
//
//  1. Lock the affected account rows (FOR UPDATE).
//  2. Apply the balance change with a conditional UPDATE.
//  3. Append exactly one ledger entry per changed account.
//
// Concurrent mutations of one account serialize on the row lock, so no
// in-process locking is involved and several instances may share a database.
package accounting

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/scraps/internal/repos/accounts/postgres"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
	pgledger "github.com/fastprodman/scraps/internal/repos/ledger/postgres"
)

type Engine struct {
	db       *sql.DB
	accounts accounts.Accounts
	entries  ledgerrepo.Ledger

	clock clock.Clock
	newID func() string
	pub   events.Publisher
	retry pgutils.RetryPolicy

	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds how long a committed mutation waits on event
// delivery before it returns.
const DefaultPublishTimeout = 2 * time.Second

type Option func(*Engine)

func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithIDGenerator replaces the uuid v4 generator used for new accounts.
func WithIDGenerator(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

func WithPublisher(p events.Publisher) Option { return func(e *Engine) { e.pub = p } }

func WithRetryPolicy(p pgutils.RetryPolicy) Option { return func(e *Engine) { e.retry = p } }

func WithPublishTimeout(d time.Duration) Option { return func(e *Engine) { e.publishTimeout = d } }

func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{
		db:       db,
		accounts: pgaccounts.New(db),
		entries:  pgledger.New(db),
		clock:    clock.System,
		newID:    uuid.NewString,
		pub:      events.Noop{},
		retry:    pgutils.RetryPolicy{Attempts: 3},

		publishTimeout: DefaultPublishTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return pgutils.WithTxRetry(ctx, e.db, e.retry, fn)
}

// publish runs after commit. The mutation already happened, so a delivery
// failure is logged rather than returned, and delivery gets at most
// publishTimeout even when the caller has gone away.
func (e *Engine) publish(ctx context.Context, evts []events.EntryRecorded) {
	if len(evts) == 0 {
		return
	}

	timeout := e.publishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := e.pub.Publish(ctx, evts...)
	if err != nil {
		slog.Warn("publish ledger events", "count", len(evts), "error", err)
	}
}
