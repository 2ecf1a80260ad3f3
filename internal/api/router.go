package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccountHandler)
		r.Get("/", h.ListAccountsHandler)

		r.Route("/{accountId}", func(r chi.Router) {
			r.Get("/", h.GetAccountHandler)
			r.Get("/transactions", h.AccountTransactionsHandler)
			r.Post("/credit", h.CreditHandler)
			r.Post("/debit", h.DebitHandler)
		})
	})

	r.Post("/batch", h.BatchHandler)
	r.Get("/logs", h.SearchLogHandler)

	r.Get("/analytics/hourly", h.HourlyHandler)
	r.Get("/analytics/stats", h.StatsHandler)
	r.Get("/fraud", h.FraudHandler)

	r.Get("/export/accounts.csv", h.ExportAccountsHandler)
	r.Get("/export/transactions.csv", h.ExportTransactionsHandler)

	return r
}
