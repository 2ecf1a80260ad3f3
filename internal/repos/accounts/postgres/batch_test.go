package accounts

import (
	"testing"

	"github.com/fastprodman/scraps/internal/infra/pgtestutil"
)

func TestAccounts_BatchDecrease_OnlyFunded(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	rich := pgtestutil.SeedAccount(t, db, "Team Rich", 100)
	poor := pgtestutil.SeedAccount(t, db, "Team Poor", 5)
	pgtestutil.SeedAccount(t, db, "Other", 100)

	repo := New(db)
	ctx := t.Context()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	locked, err := repo.LockMatching(ctx, tx, "team")
	if err != nil {
		t.Fatalf("lock matching: %v", err)
	}

	if len(locked) != 2 {
		t.Fatalf("want 2 locked, got %+v", locked)
	}

	got, err := repo.BatchDecrease(ctx, tx, "team", 10)
	if err != nil {
		t.Fatalf("batch decrease: %v", err)
	}

	if len(got) != 1 || got[0].ID != rich || got[0].Balance != 90 {
		t.Fatalf("unexpected affected: %+v", got)
	}

	for _, ref := range got {
		if ref.ID == poor {
			t.Fatalf("under-funded account was debited")
		}
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestAccounts_BatchIncrease_OrderedByID(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	for _, name := range []string{"a1", "a2", "a3", "a4"} {
		pgtestutil.SeedAccount(t, db, name, 0)
	}

	repo := New(db)
	ctx := t.Context()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.BatchIncrease(ctx, tx, "", 3)
	if err != nil {
		t.Fatalf("batch increase: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("want 4 affected, got %d", len(got))
	}

	for i, ref := range got {
		if ref.Balance != 3 {
			t.Fatalf("ref %d balance: want 3, got %d", i, ref.Balance)
		}

		if i > 0 && got[i-1].ID >= ref.ID {
			t.Fatalf("not ordered by id: %+v", got)
		}
	}
}
