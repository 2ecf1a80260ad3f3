package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/ledger"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
	"github.com/fastprodman/scraps/internal/services/accounting"
	"github.com/fastprodman/scraps/internal/services/analytics"
	"github.com/fastprodman/scraps/internal/services/fraud"
)

// Accounting is the subset of the accounting engine the API calls.
type Accounting interface {
	AddAccount(ctx context.Context, name string, initial int64) (ledger.Account, error)
	GetAccount(ctx context.Context, accountID string) (ledger.Account, error)
	SearchAccounts(ctx context.Context, filter string) ([]ledger.Account, error)
	Credit(ctx context.Context, accountID string, amount int64, reason string) (int64, error)
	Debit(ctx context.Context, accountID string, amount int64, reason string) (int64, error)
	Batch(ctx context.Context, op, filter string, amount int64, reason string) (accounting.BatchResult, error)
}

type Analytics interface {
	Hourly(ctx context.Context, hours int, kind ledger.Kind) (analytics.Hourly, error)
	Stats(ctx context.Context) (analytics.Stats, error)
	Recent(ctx context.Context, accountID string) ([]ledger.Entry, error)
	SearchLog(ctx context.Context, filter string) ([]ledgerrepo.LogRow, error)
	ExportLog(ctx context.Context) ([]ledgerrepo.LogRow, error)
}

type FraudScanner interface {
	Scan(ctx context.Context, hours int) (fraud.Report, error)
}

// HandlerProvider exposes the services as HTTP handlers.
type HandlerProvider struct {
	acct    Accounting
	stats   Analytics
	fraud   FraudScanner
	onFatal func(error)
}

// NewHandler returns a new Handler provider. onFatal, if set, is called when
// a request hits an unrecoverable storage error.
func NewHandler(acct Accounting, stats Analytics, scanner FraudScanner, onFatal func(error)) *HandlerProvider {
	if onFatal == nil {
		onFatal = func(error) {}
	}

	return &HandlerProvider{acct: acct, stats: stats, fraud: scanner, onFatal: onFatal}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto status codes. Input errors
// echo their message; everything else gets a fixed text.
func (h *HandlerProvider) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient balance")
	case errors.Is(err, pgutils.ErrStorageUnavailable):
		slog.Warn("storage unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)

		if errors.Is(err, pgutils.ErrStorageFatal) {
			h.onFatal(err)
		}

		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// queryHours reads ?hours=, defaulting to def.
func queryHours(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("hours"))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: hours must be a positive integer", ledger.ErrInvalidInput)
	}

	err = ledger.ValidateHours(n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// queryKind reads ?type=; "" and "all" select every kind.
func queryKind(r *http.Request) (ledger.Kind, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("type"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}

	return ledger.ParseKind(raw)
}

func accountIDParam(r *http.Request) string {
	return chi.URLParam(r, "accountId")
}
