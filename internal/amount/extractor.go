// Package amount recovers signed scrap amounts from ledger reason text.
//
// Entries written before amounts were stored as a column only carry the
// quantity inside their reason ("Snack (-10 scraps)"). An Extractor runs an
// ordered cascade of matchers: first the kind-specific formats, then a
// generic fallback. The first matcher that hits wins.
package amount

import (
	"github.com/fastprodman/scraps/internal/ledger"
)

// Result is a recovered amount. Value is signed by the entry kind.
type Result struct {
	Value   int64
	Matcher string
}

// Magnitude is the absolute value of the result.
func (r Result) Magnitude() int64 {
	if r.Value < 0 {
		return -r.Value
	}

	return r.Value
}

// Extractor is an ordered, first-match-wins cascade of matchers.
type Extractor struct {
	debit    []Matcher
	credit   []Matcher
	fallback []Matcher
}

// New builds an extractor. debit matchers are tried for Purchase and
// Batch Remove, credit matchers for Reimbursement and Batch Add, fallback
// matchers for every kind once the kind-specific ones miss.
func New(debit, credit, fallback []Matcher) *Extractor {
	return &Extractor{debit: debit, credit: credit, fallback: fallback}
}

// Default falls back to the first run of digits.
var Default = New(
	[]Matcher{MinusParen, MinusLoose},
	[]Matcher{PlusParen, PlusLoose},
	[]Matcher{AnyDigits},
)

// Magnitudes falls back to the first number of two or more digits, so
// single-digit noise in free text never counts as a large change.
var Magnitudes = New(
	[]Matcher{MinusParen, MinusLoose},
	[]Matcher{PlusParen, PlusLoose},
	[]Matcher{TwoPlusDigits},
)

// Extract returns the amount embedded in reason. A miss is not an error:
// the caller treats the amount as unknown.
func (e *Extractor) Extract(kind ledger.Kind, reason string) (Result, bool) {
	var specific []Matcher

	switch kind {
	case ledger.KindPurchase, ledger.KindBatchRemove:
		specific = e.debit
	case ledger.KindReimbursement, ledger.KindBatchAdd:
		specific = e.credit
	}

	for _, cascade := range [][]Matcher{specific, e.fallback} {
		for _, m := range cascade {
			n, ok := m.Match(reason)
			if ok {
				return Result{Value: kind.Sign() * n, Matcher: m.Name()}, true
			}
		}
	}

	return Result{}, false
}

// Resolve prefers the structured amount stored on the entry and falls back
// to extracting it from the reason for legacy rows.
func (e *Extractor) Resolve(entry ledger.Entry) (Result, bool) {
	v, ok := entry.Amount.Structured()
	if ok {
		return Result{Value: v, Matcher: "structured"}, true
	}

	return e.Extract(entry.Kind, entry.Reason)
}
