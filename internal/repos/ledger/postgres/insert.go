package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/scraps/internal/ledger"
)

func (r *ledgerRepo) Insert(ctx context.Context, tx *sql.Tx, e ledger.Entry) (int64, error) {
	var amount sql.NullInt64

	v, ok := e.Amount.Structured()
	if ok {
		amount = sql.NullInt64{Int64: v, Valid: true}
	}

	var seq int64

	err := tx.QueryRowContext(ctx, `
		INSERT INTO ledger_entries (account_id, kind, reason, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`, e.AccountID, string(e.Kind), e.Reason, amount, e.CreatedAt).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}

	return seq, nil
}
