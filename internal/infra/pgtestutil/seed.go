package pgtestutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
)

// SeedAccount inserts an account and returns its id.
func SeedAccount(t *testing.T, db *sql.DB, name string, balance int64) string {
	t.Helper()

	id := uuid.NewString()

	_, err := db.Exec(`INSERT INTO accounts (id, name, balance) VALUES ($1, $2, $3)`, id, name, balance)
	if err != nil {
		t.Fatalf("seed account %q: %v", name, err)
	}

	return id
}

// SeedEntry appends a raw ledger row. amount nil stores a legacy text-only row.
func SeedEntry(t *testing.T, db *sql.DB, accountID, kind, reason string, amount *int64, at time.Time) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO ledger_entries (account_id, kind, reason, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, accountID, kind, reason, amount, at)
	if err != nil {
		t.Fatalf("seed entry for %s: %v", accountID, err)
	}
}

// CountEntries returns how many ledger rows belong to accountID.
func CountEntries(t *testing.T, db *sql.DB, accountID string) int {
	t.Helper()

	var n int

	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&n)
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}

	return n
}
