package ledger

import (
	"fmt"
	"time"
)

// Amount is either a structured signed value or absent, in which case the
// quantity has to be recovered from the entry's reason text.
type Amount struct {
	value int64
	set   bool
}

// StructuredAmount wraps a signed amount stored alongside the entry.
func StructuredAmount(v int64) Amount { return Amount{value: v, set: true} }

// LegacyText marks an entry whose amount only exists inside its reason.
func LegacyText() Amount { return Amount{} }

// Structured returns the stored signed amount, if any.
func (a Amount) Structured() (int64, bool) { return a.value, a.set }

// Entry is one immutable ledger record.
type Entry struct {
	Seq       int64
	AccountID string
	Kind      Kind
	Reason    string
	Amount    Amount
	CreatedAt time.Time
}

// NewEntry builds the log entry for a mutation of amount scraps (always
// positive) with the reason text formatted for kind.
func NewEntry(accountID string, kind Kind, reason string, amount int64, at time.Time) Entry {
	return Entry{
		AccountID: accountID,
		Kind:      kind,
		Reason:    FormatReason(kind, reason, amount),
		Amount:    StructuredAmount(kind.Sign() * amount),
		CreatedAt: at,
	}
}

// FormatReason embeds the signed amount in the human readable reason, e.g.
// "Snack (-10 scraps)".
func FormatReason(kind Kind, reason string, amount int64) string {
	sign := "+"
	if kind.Debit() {
		sign = "-"
	}

	return fmt.Sprintf("%s (%s%d scraps)", reason, sign, amount)
}

// Before orders entries by timestamp, then by insertion sequence.
func (e Entry) Before(o Entry) bool {
	if e.CreatedAt.Equal(o.CreatedAt) {
		return e.Seq < o.Seq
	}

	return e.CreatedAt.Before(o.CreatedAt)
}
