package accounting

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/ledger"
)

// BatchOp names a batch operation as accepted from clients.
type BatchOp string

const (
	BatchAdd    BatchOp = "add_scraps"
	BatchRemove BatchOp = "remove_scraps"
)

const defaultBatchReason = "Batch Operation"

// ParseBatchOp rejects anything but add_scraps and remove_scraps.
func ParseBatchOp(s string) (BatchOp, error) {
	switch op := BatchOp(strings.ToLower(strings.TrimSpace(s))); op {
	case BatchAdd, BatchRemove:
		return op, nil
	default:
		return "", fmt.Errorf("%w: unknown batch operation %q", ledger.ErrInvalidInput, s)
	}
}

// BatchResult lists the accounts a batch changed. Skipped holds matching
// accounts a BatchDebit left alone because their balance was too low; they
// received no ledger entry.
type BatchResult struct {
	Op       BatchOp
	Filter   string
	Amount   int64
	Affected []ledger.AccountRef
	Skipped  []ledger.AccountRef
}

func (r BatchResult) AffectedCount() int { return len(r.Affected) }

// Batch dispatches on op.
func (e *Engine) Batch(ctx context.Context, op, filter string, amount int64, reason string) (BatchResult, error) {
	parsed, err := ParseBatchOp(op)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch: %w", err)
	}

	if parsed == BatchRemove {
		return e.BatchDebit(ctx, filter, amount, reason)
	}

	return e.BatchCredit(ctx, filter, amount, reason)
}

// BatchCredit adds amount to every account whose name contains filter
// (case-insensitive; empty matches all) and books one Batch Add per account.
func (e *Engine) BatchCredit(ctx context.Context, filter string, amount int64, reason string) (BatchResult, error) {
	res, err := e.batch(ctx, BatchAdd, filter, amount, reason)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch credit: %w", err)
	}

	return res, nil
}

// BatchDebit removes amount from every matching account that holds at least
// amount and books one Batch Remove per changed account.
func (e *Engine) BatchDebit(ctx context.Context, filter string, amount int64, reason string) (BatchResult, error) {
	res, err := e.batch(ctx, BatchRemove, filter, amount, reason)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch debit: %w", err)
	}

	return res, nil
}

func (e *Engine) batch(ctx context.Context, op BatchOp, filter string, amount int64, reason string) (BatchResult, error) {
	err := ledger.ValidateAmount(amount)
	if err != nil {
		return BatchResult{}, err
	}

	reason = reasonOr(reason, defaultBatchReason)
	kind := ledger.KindBatchAdd

	if op == BatchRemove {
		kind = ledger.KindBatchRemove
	}

	var (
		res  BatchResult
		evts []events.EntryRecorded
	)

	err = e.inTx(ctx, func(tx *sql.Tx) error {
		res = BatchResult{Op: op, Filter: filter, Amount: amount}
		evts = nil

		// Lock in id order first so concurrent batches cannot deadlock.
		matched, err := e.accounts.LockMatching(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("lock matching: %w", err)
		}

		if op == BatchRemove {
			res.Affected, err = e.accounts.BatchDecrease(ctx, tx, filter, amount)
		} else {
			res.Affected, err = e.accounts.BatchIncrease(ctx, tx, filter, amount)
		}

		if err != nil {
			return fmt.Errorf("apply batch: %w", err)
		}

		res.Skipped = skipped(matched, res.Affected)
		now := e.clock.Now()

		for _, ref := range res.Affected {
			entry := ledger.NewEntry(ref.ID, kind, reason, amount, now)

			entry.Seq, err = e.entries.Insert(ctx, tx, entry)
			if err != nil {
				return fmt.Errorf("insert entry for %s: %w", ref.ID, err)
			}

			evts = append(evts, events.NewEntryRecorded(entry, ref.Balance))
		}

		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	slog.Info("batch applied",
		"op", string(op), "filter", filter, "amount", amount,
		"affected", len(res.Affected), "skipped", len(res.Skipped))

	e.publish(ctx, evts)

	return res, nil
}

// skipped returns the matched accounts missing from affected. Both inputs
// are ordered by id.
func skipped(matched, affected []ledger.AccountRef) []ledger.AccountRef {
	hit := make(map[string]bool, len(affected))
	for _, a := range affected {
		hit[a.ID] = true
	}

	var out []ledger.AccountRef

	for _, m := range matched {
		if !hit[m.ID] {
			out = append(out, m)
		}
	}

	return out
}
