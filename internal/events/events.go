// Package events announces committed ledger entries to downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/fastprodman/scraps/internal/ledger"
)

// EntryRecorded is published once per committed ledger entry.
type EntryRecorded struct {
	Seq       int64     `json:"seq"`
	AccountID string    `json:"account_id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
	Amount    int64     `json:"amount"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntryRecorded builds the event for e after the account reached balance.
func NewEntryRecorded(e ledger.Entry, balance int64) EntryRecorded {
	amount, _ := e.Amount.Structured()

	return EntryRecorded{
		Seq:       e.Seq,
		AccountID: e.AccountID,
		Kind:      string(e.Kind),
		Reason:    e.Reason,
		Amount:    amount,
		Balance:   balance,
		CreatedAt: e.CreatedAt,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evts ...EntryRecorded) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, ...EntryRecorded) error { return nil }
