package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Account is a balance holder. Balance is in scraps and never negative.
type Account struct {
	ID      string
	Name    string
	Balance int64
}

// AccountRef identifies an account touched by a batch operation.
type AccountRef struct {
	ID      string
	Name    string
	Balance int64
}

// ValidateAccountID returns the canonical lowercase hyphenated form of id.
func ValidateAccountID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: malformed account id %q", ErrInvalidInput, id)
	}

	return u.String(), nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0, got %d", ErrInvalidInput, amount)
	}

	return nil
}
