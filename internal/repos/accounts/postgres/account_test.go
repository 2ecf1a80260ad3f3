package accounts

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fastprodman/scraps/internal/infra/pgtestutil"
	"github.com/fastprodman/scraps/internal/ledger"
)

func TestAccounts_CreateAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := t.Context()
	acct := ledger.Account{ID: uuid.NewString(), Name: "Alice", Balance: 7}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.Create(ctx, tx, acct)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.Get(ctx, acct.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got != acct {
		t.Fatalf("want %+v, got %+v", acct, got)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Create(ctx, tx, acct)
	if !errors.Is(err, ledger.ErrInvalidInput) {
		t.Fatalf("duplicate id: want ErrInvalidInput, got %v", err)
	}

	_, err = repo.Get(ctx, uuid.NewString())
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("missing: want ErrAccountNotFound, got %v", err)
	}
}

func TestAccounts_Search(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "Zed", 1)
	pgtestutil.SeedAccount(t, db, "alice", 2)
	pgtestutil.SeedAccount(t, db, "Malice_1", 3)
	pgtestutil.SeedAccount(t, db, "Bob", 4)

	repo := New(db)

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "empty_matches_all", filter: "", want: []string{"alice", "Bob", "Malice_1", "Zed"}},
		{name: "case_insensitive", filter: "ALIC", want: []string{"alice", "Malice_1"}},
		{name: "underscore_is_literal", filter: "e_", want: []string{"Malice_1"}},
		{name: "percent_is_literal", filter: "%", want: nil},
		{name: "no_match", filter: "qq", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(t.Context(), tt.filter)
			if err != nil {
				t.Fatalf("search: %v", err)
			}

			var names []string
			for _, a := range got {
				names = append(names, a.Name)
			}

			if len(names) != len(tt.want) {
				t.Fatalf("want %v, got %v", tt.want, names)
			}

			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("want %v, got %v", tt.want, names)
				}
			}
		})
	}
}

func TestAccounts_NamesAndTotals(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	a := pgtestutil.SeedAccount(t, db, "Alice", 10)
	b := pgtestutil.SeedAccount(t, db, "Bob", 32)

	repo := New(db)

	names, err := repo.Names(t.Context(), []string{a, b, uuid.NewString()})
	if err != nil {
		t.Fatalf("names: %v", err)
	}

	if len(names) != 2 || names[a] != "Alice" || names[b] != "Bob" {
		t.Fatalf("unexpected names: %v", names)
	}

	totals, err := repo.Totals(t.Context())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals.Accounts != 2 || totals.Scraps != 42 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
