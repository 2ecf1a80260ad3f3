package api

import (
	"time"

	"github.com/fastprodman/scraps/internal/amount"
	"github.com/fastprodman/scraps/internal/ledger"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
	"github.com/fastprodman/scraps/internal/services/accounting"
)

type createAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
}

type mutationRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type batchRequest struct {
	Operation string `json:"operation"`
	Filter    string `json:"filter"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

type accountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

func toAccount(a ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Balance: a.Balance}
}

func toAccounts(list []ledger.Account) []accountResponse {
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccount(a))
	}

	return out
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type entryResponse struct {
	Seq         int64     `json:"seq"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name,omitempty"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason"`
	Amount      *int64    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// toEntry resolves the amount for legacy rows; an unrecoverable amount is
// null.
func toEntry(e ledger.Entry, name string) entryResponse {
	out := entryResponse{
		Seq:         e.Seq,
		AccountID:   e.AccountID,
		AccountName: name,
		Kind:        string(e.Kind),
		Reason:      e.Reason,
		CreatedAt:   e.CreatedAt,
	}

	res, ok := amount.Default.Resolve(e)
	if ok {
		v := res.Value
		out.Amount = &v
	}

	return out
}

func toEntries(list []ledger.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEntry(e, ""))
	}

	return out
}

func toLogRows(list []ledgerrepo.LogRow) []entryResponse {
	out := make([]entryResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toEntry(r.Entry, r.AccountName))
	}

	return out
}

type refResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

func toRefs(refs []ledger.AccountRef) []refResponse {
	out := make([]refResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, refResponse(r))
	}

	return out
}

type batchResponse struct {
	Operation     string        `json:"operation"`
	Filter        string        `json:"filter"`
	Amount        int64         `json:"amount"`
	AffectedCount int           `json:"affected_count"`
	Affected      []refResponse `json:"affected"`
	Skipped       []refResponse `json:"skipped"`
}

func toBatch(res accounting.BatchResult) batchResponse {
	return batchResponse{
		Operation:     string(res.Op),
		Filter:        res.Filter,
		Amount:        res.Amount,
		AffectedCount: res.AffectedCount(),
		Affected:      toRefs(res.Affected),
		Skipped:       toRefs(res.Skipped),
	}
}
