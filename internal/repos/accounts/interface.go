package accounts

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fastprodman/scraps/internal/ledger"
)

// Totals summarises every account.
type Totals struct {
	Accounts int64
	Scraps   int64
}

// Accounts stores balances. Methods taking a *sql.Tx run inside the
// caller's transaction; the rest read committed state.
//
// Lookups of a missing account return ledger.ErrAccountNotFound and
// conditional decrements that cannot apply return ledger.ErrInsufficientBalance.
type Accounts interface {
	Create(ctx context.Context, tx *sql.Tx, acct ledger.Account) error
	Get(ctx context.Context, id string) (ledger.Account, error)
	Search(ctx context.Context, filter string) ([]ledger.Account, error)
	Names(ctx context.Context, ids []string) (map[string]string, error)
	Totals(ctx context.Context) (Totals, error)

	LockAndGetBalance(ctx context.Context, tx *sql.Tx, id string) (int64, error)
	IncreaseBalance(ctx context.Context, tx *sql.Tx, id string, amount int64) (int64, error)
	DecreaseBalance(ctx context.Context, tx *sql.Tx, id string, amount int64) (int64, error)

	// LockMatching locks every account whose name contains filter
	// (case-insensitive, empty matches all) in id order.
	LockMatching(ctx context.Context, tx *sql.Tx, filter string) ([]ledger.AccountRef, error)
	BatchIncrease(ctx context.Context, tx *sql.Tx, filter string, amount int64) ([]ledger.AccountRef, error)
	// BatchDecrease only touches matching accounts holding at least amount.
	BatchDecrease(ctx context.Context, tx *sql.Tx, filter string, amount int64) ([]ledger.AccountRef, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a free-text filter into an ILIKE "contains" pattern
// with LIKE metacharacters escaped.
func ContainsPattern(filter string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(filter)) + "%"
}
