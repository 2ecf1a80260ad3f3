package fraud

import (
	"cmp"
	"slices"
	"time"

	"github.com/fastprodman/scraps/internal/amount"
	"github.com/fastprodman/scraps/internal/ledger"
)

type Detector string

const (
	DetectorFrequency   Detector = "frequency"
	DetectorDuplicate   Detector = "duplicate_reason"
	DetectorCycle       Detector = "cycle"
	DetectorLargeChange Detector = "large_change"
)

// Detectors in report and scoring order.
var Detectors = []Detector{DetectorFrequency, DetectorDuplicate, DetectorCycle, DetectorLargeChange}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Finding is one flagged account (or, for duplicates, one flagged
// account/reason group).
type Finding struct {
	AccountID   string   `json:"account_id"`
	AccountName string   `json:"account_name"`
	Detector    Detector `json:"detector"`
	Metric      int      `json:"metric"`
	Severity    Severity `json:"severity"`
	Reason      string   `json:"reason,omitempty"`
}

// Every detector below is a pure function of its input; entries must all lie
// in the scanned window.

// Frequency flags accounts by number of entries.
func Frequency(entries []ledger.Entry, r Rule) []Finding {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.AccountID]++
	}

	return flagCounts(counts, DetectorFrequency, r)
}

type reasonKey struct {
	account string
	reason  string
}

// DuplicateReasons flags repeated identical Purchase reasons per account.
// Every flagged group is reported.
func DuplicateReasons(entries []ledger.Entry, r Rule) []Finding {
	counts := make(map[reasonKey]int)

	for _, e := range entries {
		if e.Kind != ledger.KindPurchase {
			continue
		}

		counts[reasonKey{e.AccountID, e.Reason}]++
	}

	var out []Finding

	for k, n := range counts {
		sev, ok := r.severity(n)
		if !ok {
			continue
		}

		out = append(out, Finding{
			AccountID: k.account,
			Detector:  DetectorDuplicate,
			Metric:    n,
			Severity:  sev,
			Reason:    k.reason,
		})
	}

	sortFindings(out)

	return out
}

// Cycles flags accounts where a Reimbursement directly follows a Purchase
// within gap, counting such adjacent pairs.
func Cycles(entries []ledger.Entry, r Rule, gap time.Duration) []Finding {
	byAccount := make(map[string][]ledger.Entry)
	for _, e := range entries {
		byAccount[e.AccountID] = append(byAccount[e.AccountID], e)
	}

	counts := make(map[string]int)

	for id, list := range byAccount {
		slices.SortStableFunc(list, func(a, b ledger.Entry) int {
			switch {
			case a.Before(b):
				return -1
			case b.Before(a):
				return 1
			default:
				return 0
			}
		})

		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1], list[i]
			if prev.Kind == ledger.KindPurchase && cur.Kind == ledger.KindReimbursement &&
				cur.CreatedAt.Sub(prev.CreatedAt) < gap {
				counts[id]++
			}
		}
	}

	return flagCounts(counts, DetectorCycle, r)
}

// LargeChanges flags accounts by number of entries moving at least
// minMagnitude scraps. Entries whose amount cannot be recovered are skipped.
func LargeChanges(entries []ledger.Entry, r Rule, minMagnitude int64, ex *amount.Extractor) []Finding {
	counts := make(map[string]int)

	for _, e := range entries {
		res, ok := ex.Resolve(e)
		if !ok || res.Magnitude() < minMagnitude {
			continue
		}

		counts[e.AccountID]++
	}

	return flagCounts(counts, DetectorLargeChange, r)
}

func flagCounts(counts map[string]int, d Detector, r Rule) []Finding {
	var out []Finding

	for id, n := range counts {
		sev, ok := r.severity(n)
		if !ok {
			continue
		}

		out = append(out, Finding{AccountID: id, Detector: d, Metric: n, Severity: sev})
	}

	sortFindings(out)

	return out
}

// sortFindings orders by metric descending, then account and reason, so
// results do not depend on map iteration.
func sortFindings(fs []Finding) {
	slices.SortFunc(fs, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(b.Metric, a.Metric),
			cmp.Compare(a.AccountID, b.AccountID),
			cmp.Compare(a.Reason, b.Reason),
		)
	})
}
