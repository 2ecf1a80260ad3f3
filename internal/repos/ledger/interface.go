package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/fastprodman/scraps/internal/ledger"
)

// LogRow is a ledger entry joined with its account's current name.
type LogRow struct {
	ledger.Entry
	AccountName string
}

// HourlyCount is the number of entries of one kind in one UTC hour.
type HourlyCount struct {
	Hour  time.Time
	Kind  ledger.Kind
	Count int64
}

// Ledger is the append-only entry log. Entries come back ordered by
// (created_at, seq) ascending unless stated otherwise.
type Ledger interface {
	Insert(ctx context.Context, tx *sql.Tx, e ledger.Entry) (int64, error)

	ListWindow(ctx context.Context, w ledger.Window) ([]ledger.Entry, error)
	// Recent returns the newest entries of one account, newest first.
	Recent(ctx context.Context, accountID string, limit int) ([]ledger.Entry, error)
	// Search returns entries whose account name contains filter, newest first.
	// limit <= 0 returns every match.
	Search(ctx context.Context, filter string, limit int) ([]LogRow, error)
	// HourlyCounts groups entries in w by hour and kind; kind "" means all kinds.
	HourlyCounts(ctx context.Context, w ledger.Window, kind ledger.Kind) ([]HourlyCount, error)
	Count(ctx context.Context) (int64, error)
}
