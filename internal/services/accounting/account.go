package accounting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/ledger"
)

const openingReason = "Opening balance"

// AddAccount creates an account. A positive initial balance is booked as a
// Reimbursement so the ledger accounts for every scrap.
func (e *Engine) AddAccount(ctx context.Context, name string, initial int64) (ledger.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ledger.Account{}, fmt.Errorf("add account: %w: name required", ledger.ErrInvalidInput)
	}

	if initial < 0 {
		return ledger.Account{}, fmt.Errorf("add account: %w: initial balance must be >= 0", ledger.ErrInvalidInput)
	}

	acct := ledger.Account{ID: e.newID(), Name: name, Balance: initial}

	var evts []events.EntryRecorded

	err := e.inTx(ctx, func(tx *sql.Tx) error {
		evts = nil

		err := e.accounts.Create(ctx, tx, acct)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if initial == 0 {
			return nil
		}

		entry := ledger.NewEntry(acct.ID, ledger.KindReimbursement, openingReason, initial, e.clock.Now())

		entry.Seq, err = e.entries.Insert(ctx, tx, entry)
		if err != nil {
			return fmt.Errorf("insert opening entry: %w", err)
		}

		evts = append(evts, events.NewEntryRecorded(entry, initial))

		return nil
	})
	if err != nil {
		return ledger.Account{}, fmt.Errorf("add account: %w", err)
	}

	e.publish(ctx, evts)

	return acct, nil
}

func (e *Engine) GetAccount(ctx context.Context, accountID string) (ledger.Account, error) {
	id, err := ledger.ValidateAccountID(accountID)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("get account: %w", err)
	}

	acct, err := e.accounts.Get(ctx, id)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("get account: %w", err)
	}

	return acct, nil
}

// SearchAccounts lists accounts whose name contains filter, ordered by name.
func (e *Engine) SearchAccounts(ctx context.Context, filter string) ([]ledger.Account, error) {
	accts, err := e.accounts.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}

	return accts, nil
}
