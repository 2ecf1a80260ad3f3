package api

import (
	"context"
	"net/http"
)

// CreateAccountHandler handles POST /accounts
func (h *HandlerProvider) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := h.acct.AddAccount(r.Context(), req.Name, req.InitialBalance)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccount(acct))
}

// ListAccountsHandler handles GET /accounts?search=
func (h *HandlerProvider) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.acct.SearchAccounts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccounts(list))
}

// GetAccountHandler handles GET /accounts/{accountId}
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := h.acct.GetAccount(r.Context(), accountIDParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccount(acct))
}

// AccountTransactionsHandler handles GET /accounts/{accountId}/transactions
func (h *HandlerProvider) AccountTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.Recent(r.Context(), accountIDParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntries(entries))
}

// CreditHandler handles POST /accounts/{accountId}/credit
func (h *HandlerProvider) CreditHandler(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.acct.Credit)
}

// DebitHandler handles POST /accounts/{accountId}/debit
func (h *HandlerProvider) DebitHandler(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.acct.Debit)
}

type mutateFunc func(ctx context.Context, accountID string, amount int64, reason string) (int64, error)

func (h *HandlerProvider) mutate(w http.ResponseWriter, r *http.Request, fn mutateFunc) {
	var req mutationRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := accountIDParam(r)

	balance, err := fn(r.Context(), id, req.Amount, req.Reason)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{AccountID: id, Balance: balance})
}

// BatchHandler handles POST /batch
func (h *HandlerProvider) BatchHandler(w http.ResponseWriter, r *http.Request) {
	var req batchRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.acct.Batch(r.Context(), req.Operation, req.Filter, req.Amount, req.Reason)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBatch(res))
}
