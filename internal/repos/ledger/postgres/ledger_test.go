package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/fastprodman/scraps/internal/infra/pgtestutil"
	"github.com/fastprodman/scraps/internal/ledger"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func insert(t *testing.T, r *ledgerRepo, e ledger.Entry) int64 {
	t.Helper()

	ctx := context.Background()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	seq, err := r.Insert(ctx, tx, e)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("insert: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return seq
}

func TestLedger_InsertAndListWindow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	id := pgtestutil.SeedAccount(t, db, "Alice", 0)

	// Same timestamp: insertion order decides.
	first := insert(t, repo, ledger.NewEntry(id, ledger.KindReimbursement, "Top-up", 100, base))
	second := insert(t, repo, ledger.NewEntry(id, ledger.KindPurchase, "Snack", 30, base))
	insert(t, repo, ledger.NewEntry(id, ledger.KindPurchase, "Late", 1, base.Add(3*time.Hour)))

	if second <= first {
		t.Fatalf("seq not increasing: %d then %d", first, second)
	}

	got, err := repo.ListWindow(t.Context(), ledger.Window{From: base, To: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}

	if got[0].Reason != "Top-up (+100 scraps)" || got[1].Reason != "Snack (-30 scraps)" {
		t.Fatalf("unexpected order: %+v", got)
	}

	v, ok := got[1].Amount.Structured()
	if !ok || v != -30 {
		t.Fatalf("structured amount: %d, %v", v, ok)
	}

	if !got[0].CreatedAt.Equal(base) || got[0].CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at: %v", got[0].CreatedAt)
	}
}

func TestLedger_LegacyRowsHaveNoStructuredAmount(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	id := pgtestutil.SeedAccount(t, db, "Bob", 0)
	pgtestutil.SeedEntry(t, db, id, "Purchase", "Old snack (-5 scraps)", nil, base)

	got, err := repo.Recent(t.Context(), id, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("want 1 entry, got %d", len(got))
	}

	if _, ok := got[0].Amount.Structured(); ok {
		t.Fatalf("legacy row reported a structured amount")
	}
}

func TestLedger_AppendOnly(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	id := pgtestutil.SeedAccount(t, db, "Carol", 0)
	pgtestutil.SeedEntry(t, db, id, "Purchase", "x", nil, base)

	_, err := db.Exec(`UPDATE ledger_entries SET reason = 'y'`)
	if err == nil {
		t.Fatalf("update succeeded on append-only log")
	}

	_, err = db.Exec(`DELETE FROM ledger_entries`)
	if err == nil {
		t.Fatalf("delete succeeded on append-only log")
	}
}

func TestLedger_SearchAndHourlyCounts(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	alice := pgtestutil.SeedAccount(t, db, "Alice", 0)
	bob := pgtestutil.SeedAccount(t, db, "Bob", 0)

	pgtestutil.SeedEntry(t, db, alice, "Purchase", "a1", nil, base.Add(5*time.Minute))
	pgtestutil.SeedEntry(t, db, alice, "Purchase", "a2", nil, base.Add(50*time.Minute))
	pgtestutil.SeedEntry(t, db, alice, "Reimbursement", "a3", nil, base.Add(70*time.Minute))
	pgtestutil.SeedEntry(t, db, bob, "Purchase", "b1", nil, base.Add(10*time.Minute))

	rows, err := repo.Search(t.Context(), "ALI", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(rows) != 2 || rows[0].Reason != "a3" || rows[0].AccountName != "Alice" {
		t.Fatalf("unexpected search rows: %+v", rows)
	}

	all, err := repo.Search(t.Context(), "", 0)
	if err != nil {
		t.Fatalf("search all: %v", err)
	}

	if len(all) != 4 {
		t.Fatalf("want 4 rows, got %d", len(all))
	}

	w := ledger.Window{From: base, To: base.Add(2 * time.Hour)}

	counts, err := repo.HourlyCounts(t.Context(), w, "")
	if err != nil {
		t.Fatalf("hourly counts: %v", err)
	}

	want := map[string]int64{
		"10:00 Purchase":      3,
		"11:00 Reimbursement": 1,
	}

	if len(counts) != len(want) {
		t.Fatalf("want %d groups, got %+v", len(want), counts)
	}

	for _, c := range counts {
		key := c.Hour.Format("15:04") + " " + string(c.Kind)
		if want[key] != c.Count {
			t.Fatalf("group %s: want %d, got %d", key, want[key], c.Count)
		}
	}

	counts, err = repo.HourlyCounts(t.Context(), w, ledger.KindReimbursement)
	if err != nil {
		t.Fatalf("hourly counts by kind: %v", err)
	}

	if len(counts) != 1 || counts[0].Count != 1 {
		t.Fatalf("unexpected filtered counts: %+v", counts)
	}

	n, err := repo.Count(t.Context())
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	if n != 4 {
		t.Fatalf("want 4, got %d", n)
	}
}
