// Package fraud scans a window of the ledger for suspicious patterns and
// ranks accounts by a weighted risk score.
package fraud

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fastprodman/scraps/internal/amount"
	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
	"github.com/fastprodman/scraps/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/scraps/internal/repos/accounts/postgres"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
	pgledger "github.com/fastprodman/scraps/internal/repos/ledger/postgres"
)

// UnknownAccount names flagged accounts that no longer resolve.
const UnknownAccount = "Unknown"

// Report is the outcome of one scan.
type Report struct {
	Window       ledger.Window `json:"window"`
	Scanned      int           `json:"scanned"`
	Frequency    []Finding     `json:"frequency"`
	Duplicates   []Finding     `json:"duplicate_reasons"`
	Cycles       []Finding     `json:"cycles"`
	LargeChanges []Finding     `json:"large_changes"`
	Risk         []Score       `json:"risk"`
}

type Service struct {
	accounts accounts.Accounts
	entries  ledgerrepo.Ledger
	clock    clock.Clock
	policy   Policy
	retry    pgutils.RetryPolicy
}

func New(db *sql.DB, policy Policy, c clock.Clock, retry pgutils.RetryPolicy) *Service {
	return &Service{
		accounts: pgaccounts.New(db),
		entries:  pgledger.New(db),
		clock:    c,
		policy:   policy,
		retry:    retry,
	}
}

// Scan runs every detector over [now-hours, now].
func (s *Service) Scan(ctx context.Context, hours int) (Report, error) {
	w, err := ledger.LastHours(s.clock.Now(), hours)
	if err != nil {
		return Report{}, fmt.Errorf("fraud scan: %w", err)
	}

	var entries []ledger.Entry

	err = pgutils.Retry(ctx, s.retry, "list window", func(ctx context.Context) error {
		var lerr error
		entries, lerr = s.entries.ListWindow(ctx, w)

		return lerr
	})
	if err != nil {
		return Report{}, fmt.Errorf("fraud scan: %w", err)
	}

	rep := Report{Window: w, Scanned: len(entries)}
	p := s.policy

	// Detectors share the read-only entry slice and write disjoint fields.
	// Cycles sorts per-account copies, never entries itself.
	g, gctx := errgroup.WithContext(ctx)

	run := func(dst *[]Finding, fn func() []Finding) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			*dst = fn()

			return nil
		})
	}

	run(&rep.Frequency, func() []Finding { return Frequency(entries, p.Frequency) })
	run(&rep.Duplicates, func() []Finding { return DuplicateReasons(entries, p.Duplicate) })
	run(&rep.Cycles, func() []Finding { return Cycles(entries, p.Cycle, p.CycleGap) })
	run(&rep.LargeChanges, func() []Finding {
		return LargeChanges(entries, p.LargeChange, p.MinMagnitude, amount.Magnitudes)
	})

	err = g.Wait()
	if err != nil {
		return Report{}, fmt.Errorf("fraud scan: %w", err)
	}

	err = s.attachNames(ctx, &rep)
	if err != nil {
		return Report{}, fmt.Errorf("fraud scan: %w", err)
	}

	all := make([]Finding, 0, len(rep.Frequency)+len(rep.Duplicates)+len(rep.Cycles)+len(rep.LargeChanges))
	all = append(all, rep.Frequency...)
	all = append(all, rep.Duplicates...)
	all = append(all, rep.Cycles...)
	all = append(all, rep.LargeChanges...)

	rep.Risk = Aggregate(p, all)

	slog.Info("fraud scan",
		"hours", hours, "scanned", rep.Scanned,
		"flagged", len(rep.Risk))

	return rep, nil
}

func (s *Service) attachNames(ctx context.Context, rep *Report) error {
	lists := []*[]Finding{&rep.Frequency, &rep.Duplicates, &rep.Cycles, &rep.LargeChanges}

	seen := make(map[string]bool)

	var ids []string

	for _, l := range lists {
		for _, f := range *l {
			if !seen[f.AccountID] {
				seen[f.AccountID] = true
				ids = append(ids, f.AccountID)
			}
		}
	}

	if len(ids) == 0 {
		return nil
	}

	var names map[string]string

	err := pgutils.Retry(ctx, s.retry, "account names", func(ctx context.Context) error {
		var nerr error
		names, nerr = s.accounts.Names(ctx, ids)

		return nerr
	})
	if err != nil {
		return err
	}

	for _, l := range lists {
		for i := range *l {
			f := &(*l)[i]

			f.AccountName = names[f.AccountID]
			if f.AccountName == "" {
				f.AccountName = UnknownAccount
			}
		}
	}

	return nil
}
