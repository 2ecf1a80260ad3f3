// Package analytics answers read-only questions about the ledger: activity
// per hour, dashboard totals, and log lookups.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
	"github.com/fastprodman/scraps/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/scraps/internal/repos/accounts/postgres"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
	pgledger "github.com/fastprodman/scraps/internal/repos/ledger/postgres"
)

const (
	RecentLimit = 10
	SearchLimit = 100
)

type Service struct {
	accounts accounts.Accounts
	entries  ledgerrepo.Ledger
	clock    clock.Clock
	retry    pgutils.RetryPolicy
}

func New(db *sql.DB, c clock.Clock, retry pgutils.RetryPolicy) *Service {
	return &Service{
		accounts: pgaccounts.New(db),
		entries:  pgledger.New(db),
		clock:    c,
		retry:    retry,
	}
}

// read retries a query on transient storage errors.
func read[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T

	err := pgutils.Retry(ctx, s.retry, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)

		return err
	})

	return out, err
}

// Stats are the dashboard totals.
type Stats struct {
	Accounts       int64           `json:"total_accounts"`
	Entries        int64           `json:"total_transactions"`
	Scraps         int64           `json:"total_scraps"`
	AverageBalance decimal.Decimal `json:"average_balance"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	totals, err := read(ctx, s, "account totals", s.accounts.Totals)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	count, err := read(ctx, s, "count entries", s.entries.Count)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	return Stats{
		Accounts:       totals.Accounts,
		Entries:        count,
		Scraps:         totals.Scraps,
		AverageBalance: average(totals),
	}, nil
}

// average is Scraps/Accounts rounded half away from zero to cents.
func average(t accounts.Totals) decimal.Decimal {
	if t.Accounts == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(t.Scraps).DivRound(decimal.NewFromInt(t.Accounts), 2)
}

// Recent returns the newest entries of one account, newest first.
func (s *Service) Recent(ctx context.Context, accountID string) ([]ledger.Entry, error) {
	id, err := ledger.ValidateAccountID(accountID)
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}

	_, err = read(ctx, s, "get account", func(ctx context.Context) (ledger.Account, error) {
		return s.accounts.Get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}

	out, err := read(ctx, s, "recent entries", func(ctx context.Context) ([]ledger.Entry, error) {
		return s.entries.Recent(ctx, id, RecentLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}

	return out, nil
}

// SearchLog returns up to SearchLimit entries whose account name contains
// filter, newest first.
func (s *Service) SearchLog(ctx context.Context, filter string) ([]ledgerrepo.LogRow, error) {
	return s.searchLog(ctx, filter, SearchLimit)
}

// ExportLog returns every entry with its account name, newest first.
func (s *Service) ExportLog(ctx context.Context) ([]ledgerrepo.LogRow, error) {
	return s.searchLog(ctx, "", 0)
}

func (s *Service) searchLog(ctx context.Context, filter string, limit int) ([]ledgerrepo.LogRow, error) {
	out, err := read(ctx, s, "search log", func(ctx context.Context) ([]ledgerrepo.LogRow, error) {
		return s.entries.Search(ctx, filter, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("search log: %w", err)
	}

	return out, nil
}

// Hourly counts entries per UTC hour for the last hours hours, the current
// hour included. kind "" counts every kind.
func (s *Service) Hourly(ctx context.Context, hours int, kind ledger.Kind) (Hourly, error) {
	err := ledger.ValidateHours(hours)
	if err != nil {
		return Hourly{}, fmt.Errorf("hourly: %w", err)
	}

	now := s.clock.Now().UTC()
	w := ledger.Window{From: now.Truncate(time.Hour).Add(-time.Duration(hours-1) * time.Hour), To: now}

	counts, err := read(ctx, s, "hourly counts", func(ctx context.Context) ([]ledgerrepo.HourlyCount, error) {
		return s.entries.HourlyCounts(ctx, w, kind)
	})
	if err != nil {
		return Hourly{}, fmt.Errorf("hourly: %w", err)
	}

	kinds := ledger.Kinds
	if kind != "" {
		kinds = []ledger.Kind{kind}
	}

	return buildHourly(w.From, hours, kinds, counts), nil
}
