package ledger

import (
	"context"
	"fmt"

	"github.com/fastprodman/scraps/internal/ledger"
	"github.com/fastprodman/scraps/internal/repos/accounts"
	repo "github.com/fastprodman/scraps/internal/repos/ledger"
)

func (r *ledgerRepo) ListWindow(ctx context.Context, w ledger.Window) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, seq ASC
	`, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}

	return collectEntries(rows)
}

func (r *ledgerRepo) Recent(ctx context.Context, accountID string, limit int) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}

	return collectEntries(rows)
}

func (r *ledgerRepo) Search(ctx context.Context, filter string, limit int) ([]repo.LogRow, error) {
	// NULL is LIMIT ALL
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.seq, e.account_id, e.kind, e.reason, e.amount, e.created_at, a.name
		FROM ledger_entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE a.name ILIKE $1
		ORDER BY e.created_at DESC, e.seq DESC
		LIMIT $2
	`, accounts.ContainsPattern(filter), lim)
	if err != nil {
		return nil, fmt.Errorf("search log: %w", err)
	}
	defer rows.Close()

	var out []repo.LogRow

	for rows.Next() {
		var row repo.LogRow

		row.Entry, err = scanEntry(rows, &row.AccountName)
		if err != nil {
			return nil, err
		}

		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate log rows: %w", err)
	}

	return out, nil
}

func (r *ledgerRepo) HourlyCounts(ctx context.Context, w ledger.Window, kind ledger.Kind) ([]repo.HourlyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc('hour', created_at AT TIME ZONE 'UTC') AS hour, kind, COUNT(*)
		FROM ledger_entries
		WHERE created_at >= $1 AND created_at <= $2
		  AND ($3 = '' OR kind = $3)
		GROUP BY 1, 2
		ORDER BY 1, 2
	`, w.From, w.To, string(kind))
	if err != nil {
		return nil, fmt.Errorf("hourly counts: %w", err)
	}
	defer rows.Close()

	var out []repo.HourlyCount

	for rows.Next() {
		var (
			hc repo.HourlyCount
			k  string
		)

		err = rows.Scan(&hc.Hour, &k, &hc.Count)
		if err != nil {
			return nil, fmt.Errorf("scan hourly count: %w", err)
		}

		hc.Kind = ledger.Kind(k)
		hc.Hour = hc.Hour.UTC()
		out = append(out, hc)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate hourly counts: %w", err)
	}

	return out, nil
}

func (r *ledgerRepo) Count(ctx context.Context) (int64, error) {
	var n int64

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return n, nil
}
