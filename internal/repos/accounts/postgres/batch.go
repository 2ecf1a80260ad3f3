package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
	"github.com/fastprodman/scraps/internal/repos/accounts"
)

func (r *accountsRepo) LockMatching(ctx context.Context, tx *sql.Tx, filter string) ([]ledger.AccountRef, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, balance
		FROM accounts
		WHERE name ILIKE $1
		ORDER BY id
		FOR UPDATE
	`, accounts.ContainsPattern(filter))
	if err != nil {
		return nil, fmt.Errorf("lock matching: %w", err)
	}

	return scanRefs(rows)
}

func (r *accountsRepo) BatchIncrease(ctx context.Context, tx *sql.Tx, filter string, amount int64) ([]ledger.AccountRef, error) {
	rows, err := tx.QueryContext(ctx, `
		UPDATE accounts
		SET balance = balance + $2
		WHERE name ILIKE $1
		RETURNING id, name, balance
	`, accounts.ContainsPattern(filter), amount)
	if err != nil {
		if pgutils.IsNumericOverflow(err) {
			return nil, errBalanceOverflow
		}

		return nil, fmt.Errorf("batch increase: %w", err)
	}

	refs, err := scanRefs(rows)
	if pgutils.IsNumericOverflow(err) {
		return nil, errBalanceOverflow
	}

	return refs, err
}

func (r *accountsRepo) BatchDecrease(ctx context.Context, tx *sql.Tx, filter string, amount int64) ([]ledger.AccountRef, error) {
	rows, err := tx.QueryContext(ctx, `
		UPDATE accounts
		SET balance = balance - $2
		WHERE name ILIKE $1
		  AND balance >= $2
		RETURNING id, name, balance
	`, accounts.ContainsPattern(filter), amount)
	if err != nil {
		return nil, fmt.Errorf("batch decrease: %w", err)
	}

	return scanRefs(rows)
}

// scanRefs drains rows and returns them ordered by id; RETURNING order is
// not defined.
func scanRefs(rows *sql.Rows) ([]ledger.AccountRef, error) {
	defer rows.Close()

	var out []ledger.AccountRef

	for rows.Next() {
		var ref ledger.AccountRef

		err := rows.Scan(&ref.ID, &ref.Name, &ref.Balance)
		if err != nil {
			return nil, fmt.Errorf("scan account ref: %w", err)
		}

		out = append(out, ref)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate account refs: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}
