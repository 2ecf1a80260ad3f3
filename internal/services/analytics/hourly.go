package analytics

import (
	"time"

	"github.com/fastprodman/scraps/internal/ledger"
	ledgerrepo "github.com/fastprodman/scraps/internal/repos/ledger"
)

const hourLabel = "2006-01-02 15:00"

// Hourly is a zero-filled series per kind, one point per hour label.
type Hourly struct {
	Labels []string                `json:"labels"`
	Series map[ledger.Kind][]int64 `json:"series"`
}

// buildHourly spreads counts over hours buckets starting at from. Counts
// outside the buckets or for kinds not requested are dropped.
func buildHourly(from time.Time, hours int, kinds []ledger.Kind, counts []ledgerrepo.HourlyCount) Hourly {
	h := Hourly{
		Labels: make([]string, hours),
		Series: make(map[ledger.Kind][]int64, len(kinds)),
	}

	for i := range hours {
		h.Labels[i] = from.Add(time.Duration(i) * time.Hour).Format(hourLabel)
	}

	for _, k := range kinds {
		h.Series[k] = make([]int64, hours)
	}

	for _, c := range counts {
		series, ok := h.Series[c.Kind]
		if !ok {
			continue
		}

		if c.Hour.Before(from) {
			continue
		}

		i := int(c.Hour.Sub(from) / time.Hour)
		if i >= hours {
			continue
		}

		series[i] += c.Count
	}

	return h
}
