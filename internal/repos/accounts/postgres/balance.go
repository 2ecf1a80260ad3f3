package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
)

var errBalanceOverflow = fmt.Errorf("%w: balance would exceed the maximum", ledger.ErrInvalidInput)

func (r *accountsRepo) LockAndGetBalance(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrAccountNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

func (r *accountsRepo) IncreaseBalance(ctx context.Context, tx *sql.Tx, id string, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrAccountNotFound
		}

		if pgutils.IsNumericOverflow(err) {
			return 0, errBalanceOverflow
		}

		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return balance, nil
}

// DecreaseBalance applies only when the balance covers amount. A missing
// account and a short balance both surface as ErrInsufficientBalance; callers
// that need to tell them apart lock the row first.
func (r *accountsRepo) DecreaseBalance(ctx context.Context, tx *sql.Tx, id string, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
		RETURNING balance
	`, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrInsufficientBalance
		}

		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	return balance, nil
}
