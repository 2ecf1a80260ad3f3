package amount

import (
	"regexp"
	"strconv"
)

// Matcher recognises one textual amount format.
type Matcher interface {
	Name() string
	Match(reason string) (int64, bool)
}

// regexMatcher reads the magnitude from the first capture group of the
// leftmost match.
type regexMatcher struct {
	name string
	re   *regexp.Regexp
}

func newRegexMatcher(name, pattern string) regexMatcher {
	return regexMatcher{name: name, re: regexp.MustCompile(pattern)}
}

func (m regexMatcher) Name() string { return m.name }

func (m regexMatcher) Match(reason string) (int64, bool) {
	sub := m.re.FindStringSubmatch(reason)
	if sub == nil {
		return 0, false
	}

	n, err := strconv.ParseInt(sub[1], 10, 64)
	if err != nil {
		// overflowing digit runs are treated as no amount at all
		return 0, false
	}

	if n < 0 {
		n = -n
	}

	return n, true
}

// Built-in matchers.
var (
	// MinusParen matches the canonical "(-10 scraps)".
	MinusParen Matcher = newRegexMatcher("minus_paren", `\(-(\d+)\s*scraps\)`)
	// MinusLoose matches "- 10 scraps" anywhere.
	MinusLoose Matcher = newRegexMatcher("minus_loose", `-\s*(\d+)\s*scraps`)
	// PlusParen matches the canonical "(+10 scraps)".
	PlusParen Matcher = newRegexMatcher("plus_paren", `\(\+(\d+)\s*scraps\)`)
	// PlusLoose matches "+ 10 scraps" anywhere.
	PlusLoose Matcher = newRegexMatcher("plus_loose", `\+\s*(\d+)\s*scraps`)
	// AnyDigits matches the first run of digits.
	AnyDigits Matcher = newRegexMatcher("any_digits", `(\d+)`)
	// TwoPlusDigits matches the first number with at least two digits,
	// optionally signed.
	TwoPlusDigits Matcher = newRegexMatcher("two_plus_digits", `([-+]?\d{2,})`)
)
