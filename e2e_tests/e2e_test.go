package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
	timeout        = 5 * time.Second
	waitReady      = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

// baseURL points at a running API; the suite is skipped unless E2E_BASE_URL
// is set.
func baseURL(t *testing.T) string {
	t.Helper()

	u := os.Getenv("E2E_BASE_URL")
	if u == "" {
		t.Skip("E2E_BASE_URL not set")
	}

	if u == "default" {
		return defaultBaseURL
	}

	return strings.TrimRight(u, "/")
}

type account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type entry struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Amount *int64 `json:"amount"`
}

func TestE2E_AccountFlow(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	name := uniqName("alice")

	var acct account

	code, body := doJSON(t, http.MethodPost, base+"/accounts", map[string]any{"name": name}, &acct)
	if code != http.StatusCreated {
		t.Fatalf("create account: want 201, got %d (%s)", code, body)
	}

	if acct.Balance != 0 || acct.Name != name {
		t.Fatalf("unexpected account: %+v", acct)
	}

	t.Run("credit_then_debit", func(t *testing.T) {
		code, body := doJSON(t, http.MethodPost, base+"/accounts/"+acct.ID+"/credit",
			map[string]any{"amount": 100, "reason": "Top-up"}, nil)
		if code != http.StatusOK {
			t.Fatalf("credit: want 200, got %d (%s)", code, body)
		}

		code, body = doJSON(t, http.MethodPost, base+"/accounts/"+acct.ID+"/debit",
			map[string]any{"amount": 30, "reason": "Snack"}, nil)
		if code != http.StatusOK {
			t.Fatalf("debit: want 200, got %d (%s)", code, body)
		}

		if got := getAccount(t, base, acct.ID).Balance; got != 70 {
			t.Fatalf("balance: want 70, got %d", got)
		}

		var entries []entry

		code, body = doJSON(t, http.MethodGet, base+"/accounts/"+acct.ID+"/transactions", nil, &entries)
		if code != http.StatusOK {
			t.Fatalf("transactions: want 200, got %d (%s)", code, body)
		}

		if len(entries) != 2 {
			t.Fatalf("want 2 entries, got %d", len(entries))
		}

		// newest first
		if entries[0].Kind != "Purchase" || entries[0].Reason != "Snack (-30 scraps)" ||
			entries[0].Amount == nil || *entries[0].Amount != -30 {
			t.Fatalf("unexpected newest entry: %+v", entries[0])
		}

		if entries[1].Kind != "Reimbursement" || entries[1].Reason != "Top-up (+100 scraps)" {
			t.Fatalf("unexpected oldest entry: %+v", entries[1])
		}
	})

	t.Run("insufficient_balance_conflict", func(t *testing.T) {
		code, body := doJSON(t, http.MethodPost, base+"/accounts/"+acct.ID+"/debit",
			map[string]any{"amount": 1000, "reason": "X"}, nil)
		if code != http.StatusConflict {
			t.Fatalf("overdraw: want 409, got %d (%s)", code, body)
		}

		if got := getAccount(t, base, acct.ID).Balance; got != 70 {
			t.Fatalf("balance after overdraw: want 70, got %d", got)
		}
	})

	t.Run("validation", func(t *testing.T) {
		code, _ := doJSON(t, http.MethodPost, base+"/accounts/"+acct.ID+"/credit",
			map[string]any{"amount": 0, "reason": "X"}, nil)
		if code != http.StatusBadRequest {
			t.Fatalf("zero amount: want 400, got %d", code)
		}

		code, _ = doJSON(t, http.MethodGet, base+"/accounts/not-a-uuid", nil, nil)
		if code != http.StatusBadRequest {
			t.Fatalf("bad id: want 400, got %d", code)
		}

		code, _ = doJSON(t, http.MethodGet, base+"/accounts/00000000-0000-4000-8000-000000000000", nil, nil)
		if code != http.StatusNotFound {
			t.Fatalf("unknown id: want 404, got %d", code)
		}

		code, _ = doJSON(t, http.MethodPost, base+"/batch",
			map[string]any{"operation": "multiply", "amount": 1}, nil)
		if code != http.StatusBadRequest {
			t.Fatalf("bad batch op: want 400, got %d", code)
		}
	})

	t.Run("batch_remove_reports_skipped", func(t *testing.T) {
		var res struct {
			AffectedCount int       `json:"affected_count"`
			Skipped       []account `json:"skipped"`
		}

		code, body := doJSON(t, http.MethodPost, base+"/batch",
			map[string]any{"operation": "remove_scraps", "filter": name, "amount": 100}, &res)
		if code != http.StatusOK {
			t.Fatalf("batch: want 200, got %d (%s)", code, body)
		}

		if res.AffectedCount != 0 || len(res.Skipped) != 1 || res.Skipped[0].ID != acct.ID {
			t.Fatalf("unexpected batch result: %s", body)
		}
	})

	t.Run("reports_respond", func(t *testing.T) {
		for _, path := range []string{"/fraud?hours=24", "/analytics/stats", "/analytics/hourly?hours=3", "/export/transactions.csv"} {
			code, body := doJSON(t, http.MethodGet, base+path, nil, nil)
			if code != http.StatusOK {
				t.Fatalf("GET %s: want 200, got %d (%s)", path, code, body)
			}
		}
	})
}

/* -------------------- helpers -------------------- */

func getAccount(t *testing.T, base, id string) account {
	t.Helper()

	var a account

	code, body := doJSON(t, http.MethodGet, base+"/accounts/"+id, nil, &a)
	if code != http.StatusOK {
		t.Fatalf("get account: want 200, got %d (%s)", code, body)
	}

	return a
}

// doJSON sends in (if not nil) as JSON and decodes a 2xx response into out
// (if not nil).
func doJSON(t *testing.T, method, u string, in, out any) (int, string) {
	t.Helper()

	var rd io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	if out != nil && resp.StatusCode/100 == 2 {
		err = json.Unmarshal(b, out)
		if err != nil {
			t.Fatalf("decode json: %v (%s)", err, b)
		}
	}

	return resp.StatusCode, string(b)
}

// waitUntilReady waits until GET /healthz responds 200 or times out.
func waitUntilReady(t *testing.T, base string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	u := base + "/healthz"

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", u, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(u)
			if err != nil {
				// dial errors: keep waiting
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

func uniqName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
