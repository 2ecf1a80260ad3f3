package ledger

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/scraps/internal/ledger"
	repo "github.com/fastprodman/scraps/internal/repos/ledger"
)

var _ repo.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

const entryColumns = `seq, account_id, kind, reason, amount, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner, extra ...any) (ledger.Entry, error) {
	var (
		e      ledger.Entry
		kind   string
		amount sql.NullInt64
	)

	dest := append([]any{&e.Seq, &e.AccountID, &kind, &e.Reason, &amount, &e.CreatedAt}, extra...)

	err := s.Scan(dest...)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.Kind = ledger.Kind(kind)
	e.CreatedAt = e.CreatedAt.UTC()

	if amount.Valid {
		e.Amount = ledger.StructuredAmount(amount.Int64)
	}

	return e, nil
}

func collectEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	defer rows.Close()

	var out []ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return out, nil
}
