package ledger

import (
	"fmt"
	"strings"
)

// Kind is the transaction kind recorded on every ledger entry.
type Kind string

const (
	KindPurchase      Kind = "Purchase"
	KindReimbursement Kind = "Reimbursement"
	KindBatchAdd      Kind = "Batch Add"
	KindBatchRemove   Kind = "Batch Remove"
)

// Kinds lists every valid kind in a stable order.
var Kinds = []Kind{KindPurchase, KindReimbursement, KindBatchAdd, KindBatchRemove}

// ParseKind accepts the canonical kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	raw := strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(raw, string(k)) {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, s)
}

// Sign is -1 for kinds that take scraps away and +1 for kinds that add them.
func (k Kind) Sign() int64 {
	switch k {
	case KindPurchase, KindBatchRemove:
		return -1
	default:
		return 1
	}
}

// Debit reports whether the kind decreases the balance.
func (k Kind) Debit() bool { return k.Sign() < 0 }

func (k Kind) String() string { return string(k) }
