package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
	"github.com/fastprodman/scraps/internal/repos/accounts"
)

func (r *accountsRepo) Create(ctx context.Context, tx *sql.Tx, acct ledger.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
	`, acct.ID, acct.Name, acct.Balance)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: account %s already exists", ledger.ErrInvalidInput, acct.ID)
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *accountsRepo) Get(ctx context.Context, id string) (ledger.Account, error) {
	var a ledger.Account

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, balance
		FROM accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Account{}, ledger.ErrAccountNotFound
		}

		return ledger.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) Search(ctx context.Context, filter string) ([]ledger.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, balance
		FROM accounts
		WHERE name ILIKE $1
		ORDER BY lower(name) ASC, id ASC
	`, accounts.ContainsPattern(filter))
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account

	for rows.Next() {
		var a ledger.Account

		err = rows.Scan(&a.ID, &a.Name, &a.Balance)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		out = append(out, a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return out, nil
}

func (r *accountsRepo) Names(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name
		FROM accounts
		WHERE id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("account names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string

		err = rows.Scan(&id, &name)
		if err != nil {
			return nil, fmt.Errorf("scan account name: %w", err)
		}

		names[id] = name
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate account names: %w", err)
	}

	return names, nil
}

func (r *accountsRepo) Totals(ctx context.Context) (accounts.Totals, error) {
	var t accounts.Totals

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(balance), 0)
		FROM accounts
	`).Scan(&t.Accounts, &t.Scraps)
	if err != nil {
		return accounts.Totals{}, fmt.Errorf("account totals: %w", err)
	}

	return t, nil
}
