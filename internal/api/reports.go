package api

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultHourlyHours = 24
	defaultFraudHours  = 24
)

// SearchLogHandler handles GET /logs?search=
func (h *HandlerProvider) SearchLogHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.SearchLog(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLogRows(rows))
}

// HourlyHandler handles GET /analytics/hourly?hours=&type=
func (h *HandlerProvider) HourlyHandler(w http.ResponseWriter, r *http.Request) {
	hours, err := queryHours(r, defaultHourlyHours)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	kind, err := queryKind(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.stats.Hourly(r.Context(), hours, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// StatsHandler handles GET /analytics/stats
func (h *HandlerProvider) StatsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.stats.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// FraudHandler handles GET /fraud?hours=
func (h *HandlerProvider) FraudHandler(w http.ResponseWriter, r *http.Request) {
	hours, err := queryHours(r, defaultFraudHours)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	rep, err := h.fraud.Scan(r.Context(), hours)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// ExportAccountsHandler handles GET /export/accounts.csv
func (h *HandlerProvider) ExportAccountsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.acct.SearchAccounts(r.Context(), "")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	records := [][]string{{"id", "name", "balance"}}
	for _, a := range list {
		records = append(records, []string{a.ID, a.Name, strconv.FormatInt(a.Balance, 10)})
	}

	writeCSV(w, "accounts.csv", records)
}

// ExportTransactionsHandler handles GET /export/transactions.csv
func (h *HandlerProvider) ExportTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.ExportLog(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	records := [][]string{{"seq", "created_at", "account_id", "account_name", "kind", "reason", "amount"}}

	for _, row := range toLogRows(rows) {
		amt := ""
		if row.Amount != nil {
			amt = strconv.FormatInt(*row.Amount, 10)
		}

		records = append(records, []string{
			strconv.FormatInt(row.Seq, 10),
			row.CreatedAt.Format(time.RFC3339),
			row.AccountID,
			row.AccountName,
			row.Kind,
			row.Reason,
			amt,
		})
	}

	writeCSV(w, "transactions.csv", records)
}

func writeCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)

	err := cw.WriteAll(records)
	if err != nil {
		slog.Error("failed to write CSV response", "file", filename, "error", err)
	}
}
