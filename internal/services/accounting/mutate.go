package accounting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/ledger"
)

// Credit adds amount scraps and books a Reimbursement. It returns the new
// balance.
func (e *Engine) Credit(ctx context.Context, accountID string, amount int64, reason string) (int64, error) {
	balance, err := e.mutate(ctx, accountID, amount, reasonOr(reason, "Reimbursement"), ledger.KindReimbursement)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}

	return balance, nil
}

// Debit removes amount scraps and books a Purchase. A balance below amount
// fails with ledger.ErrInsufficientBalance and leaves no trace.
func (e *Engine) Debit(ctx context.Context, accountID string, amount int64, reason string) (int64, error) {
	balance, err := e.mutate(ctx, accountID, amount, reasonOr(reason, "Purchase"), ledger.KindPurchase)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}

	return balance, nil
}

func (e *Engine) mutate(ctx context.Context, accountID string, amount int64, reason string, kind ledger.Kind) (int64, error) {
	id, err := ledger.ValidateAccountID(accountID)
	if err != nil {
		return 0, err
	}

	err = ledger.ValidateAmount(amount)
	if err != nil {
		return 0, err
	}

	var (
		balance int64
		entry   ledger.Entry
	)

	err = e.inTx(ctx, func(tx *sql.Tx) error {
		// 1) Lock the row; a missing account stops here
		current, err := e.accounts.LockAndGetBalance(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// 2) Apply the effect
		if kind.Debit() {
			if current < amount {
				return fmt.Errorf("%w: balance %d, requested %d", ledger.ErrInsufficientBalance, current, amount)
			}

			balance, err = e.accounts.DecreaseBalance(ctx, tx, id, amount)
			if err != nil {
				return fmt.Errorf("decrease balance: %w", err)
			}
		} else {
			balance, err = e.accounts.IncreaseBalance(ctx, tx, id, amount)
			if err != nil {
				return fmt.Errorf("increase balance: %w", err)
			}
		}

		// 3) Record it
		entry = ledger.NewEntry(id, kind, reason, amount, e.clock.Now())

		entry.Seq, err = e.entries.Insert(ctx, tx, entry)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	e.publish(ctx, []events.EntryRecorded{events.NewEntryRecorded(entry, balance)})

	return balance, nil
}

func reasonOr(reason, fallback string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fallback
	}

	return reason
}
