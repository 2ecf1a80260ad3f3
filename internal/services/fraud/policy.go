package fraud

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule configures one detector: it flags when its metric exceeds Flag and
// marks the finding high when the metric exceeds High. Weights are the score
// contribution per tier.
type Rule struct {
	Flag         int `yaml:"flag"`
	High         int `yaml:"high"`
	HighWeight   int `yaml:"high_weight"`
	MediumWeight int `yaml:"medium_weight"`
}

func (r Rule) severity(metric int) (Severity, bool) {
	if metric <= r.Flag {
		return "", false
	}

	if metric > r.High {
		return SeverityHigh, true
	}

	return SeverityMedium, true
}

func (r Rule) weight(s Severity) int {
	if s == SeverityHigh {
		return r.HighWeight
	}

	return r.MediumWeight
}

// Policy holds every tunable of the detectors and the aggregator.
type Policy struct {
	Frequency   Rule `yaml:"frequency"`
	Duplicate   Rule `yaml:"duplicate_reason"`
	Cycle       Rule `yaml:"cycle"`
	LargeChange Rule `yaml:"large_change"`

	// CycleGap is the largest Purchase to Reimbursement distance that still
	// counts as a cycle.
	CycleGap time.Duration `yaml:"cycle_gap"`
	// MinMagnitude is the smallest amount counted as a large change.
	MinMagnitude int64 `yaml:"min_magnitude"`

	// Scores above HighScore are high risk, above MediumScore medium.
	HighScore   int `yaml:"high_score"`
	MediumScore int `yaml:"medium_score"`
	TopN        int `yaml:"top_n"`
}

func DefaultPolicy() Policy {
	return Policy{
		Frequency:    Rule{Flag: 5, High: 30, HighWeight: 30, MediumWeight: 15},
		Duplicate:    Rule{Flag: 2, High: 5, HighWeight: 25, MediumWeight: 10},
		Cycle:        Rule{Flag: 2, High: 3, HighWeight: 40, MediumWeight: 20},
		LargeChange:  Rule{Flag: 2, High: 4, HighWeight: 35, MediumWeight: 15},
		CycleGap:     time.Hour,
		MinMagnitude: 30,
		HighScore:    70,
		MediumScore:  30,
		TopN:         10,
	}
}

func (p Policy) rule(d Detector) Rule {
	switch d {
	case DetectorFrequency:
		return p.Frequency
	case DetectorDuplicate:
		return p.Duplicate
	case DetectorCycle:
		return p.Cycle
	default:
		return p.LargeChange
	}
}

var ErrInvalidPolicy = errors.New("invalid risk policy")

// Validate rejects policies that could never flag sensibly.
func (p Policy) Validate() error {
	for _, d := range Detectors {
		r := p.rule(d)
		if r.Flag < 0 || r.High < r.Flag {
			return fmt.Errorf("%w: %s thresholds flag=%d high=%d", ErrInvalidPolicy, d, r.Flag, r.High)
		}
	}

	if p.CycleGap <= 0 {
		return fmt.Errorf("%w: cycle_gap must be > 0", ErrInvalidPolicy)
	}

	if p.HighScore < p.MediumScore {
		return fmt.Errorf("%w: high_score below medium_score", ErrInvalidPolicy)
	}

	if p.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be > 0", ErrInvalidPolicy)
	}

	return nil
}

// LoadPolicy reads a YAML policy from path on top of DefaultPolicy, so a
// file only has to name the values it changes. An empty path yields the
// defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}

	err = yaml.Unmarshal(raw, &p)
	if err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}

	err = p.Validate()
	if err != nil {
		return Policy{}, err
	}

	return p, nil
}
