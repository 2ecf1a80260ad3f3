package fraud

import "slices"

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Score is the combined risk of one account.
type Score struct {
	AccountID   string     `json:"account_id"`
	AccountName string     `json:"account_name"`
	Score       int        `json:"score"`
	Level       Level      `json:"level"`
	Detectors   []Detector `json:"detectors"`
}

// Aggregate scores every account that appears in findings. Each detector
// contributes once per account, at the highest tier it assigned; different
// detectors add up. The result is ordered by score descending, ties in
// first-appearance order, and cut to p.TopN.
func Aggregate(p Policy, findings []Finding) []Score {
	type acc struct {
		score Score
		tiers map[Detector]Severity
	}

	var (
		order []string
		byID  = make(map[string]*acc)
	)

	for _, f := range findings {
		a, ok := byID[f.AccountID]
		if !ok {
			a = &acc{
				score: Score{AccountID: f.AccountID, AccountName: f.AccountName},
				tiers: make(map[Detector]Severity),
			}
			byID[f.AccountID] = a
			order = append(order, f.AccountID)
		}

		if a.tiers[f.Detector] != SeverityHigh {
			a.tiers[f.Detector] = f.Severity
		}
	}

	out := make([]Score, 0, len(order))

	for _, id := range order {
		a := byID[id]

		for _, d := range Detectors {
			sev, ok := a.tiers[d]
			if !ok {
				continue
			}

			a.score.Score += p.rule(d).weight(sev)
			a.score.Detectors = append(a.score.Detectors, d)
		}

		a.score.Level = p.level(a.score.Score)
		out = append(out, a.score)
	}

	slices.SortStableFunc(out, func(a, b Score) int { return b.Score - a.Score })

	if p.TopN > 0 && len(out) > p.TopN {
		out = out[:p.TopN]
	}

	return out
}

func (p Policy) level(score int) Level {
	switch {
	case score > p.HighScore:
		return LevelHigh
	case score > p.MediumScore:
		return LevelMedium
	default:
		return LevelLow
	}
}
