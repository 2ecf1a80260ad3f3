package accounting

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/infra/pgtestutil"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	evts []events.EntryRecorded
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.EntryRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.evts = append(p.evts, evts...)

	return nil
}

func (p *recordingPublisher) all() []events.EntryRecorded {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]events.EntryRecorded(nil), p.evts...)
}

func newEngine(t *testing.T) (*Engine, *sql.DB, *recordingPublisher) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	pub := &recordingPublisher{}
	eng := New(db, WithClock(clock.NewManual(epoch)), WithPublisher(pub))

	return eng, db, pub
}

func balanceOf(t *testing.T, db *sql.DB, id string) int64 {
	t.Helper()

	var b int64

	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, id).Scan(&b)
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}

	return b
}

type logRow struct {
	kind   string
	reason string
	amount sql.NullInt64
}

func entriesOf(t *testing.T, db *sql.DB, id string) []logRow {
	t.Helper()

	rows, err := db.Query(`
		SELECT kind, reason, amount FROM ledger_entries
		WHERE account_id = $1 ORDER BY created_at, seq
	`, id)
	if err != nil {
		t.Fatalf("query entries: %v", err)
	}
	defer rows.Close()

	var out []logRow

	for rows.Next() {
		var r logRow

		err = rows.Scan(&r.kind, &r.reason, &r.amount)
		if err != nil {
			t.Fatalf("scan entry: %v", err)
		}

		out = append(out, r)
	}

	if err = rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}

	return out
}

// stallingPublisher blocks until its context ends and records why.
type stallingPublisher struct {
	done chan error
}

func (p *stallingPublisher) Publish(ctx context.Context, _ ...events.EntryRecorded) error {
	<-ctx.Done()
	p.done <- ctx.Err()

	return ctx.Err()
}
