package ledger

import "errors"

// Business-rule failures. They are expected outcomes, returned wrapped to callers.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidInput        = errors.New("invalid input")
)
