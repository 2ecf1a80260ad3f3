package fraud

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_CycleHighPlusFrequencyMedium(t *testing.T) {
	t.Parallel()

	got := Aggregate(DefaultPolicy(), []Finding{
		{AccountID: "a", Detector: DetectorFrequency, Severity: SeverityMedium},
		{AccountID: "a", Detector: DetectorCycle, Severity: SeverityHigh},
	})

	require.Len(t, got, 1)
	assert.Equal(t, 55, got[0].Score)
	assert.Equal(t, LevelMedium, got[0].Level)
	assert.Equal(t, []Detector{DetectorFrequency, DetectorCycle}, got[0].Detectors)
}

func TestAggregate_SameDetectorCountsOnce(t *testing.T) {
	t.Parallel()

	got := Aggregate(DefaultPolicy(), []Finding{
		{AccountID: "a", Detector: DetectorDuplicate, Severity: SeverityMedium, Reason: "x"},
		{AccountID: "a", Detector: DetectorDuplicate, Severity: SeverityHigh, Reason: "y"},
		{AccountID: "a", Detector: DetectorDuplicate, Severity: SeverityMedium, Reason: "z"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].Score)
	assert.Equal(t, LevelLow, got[0].Level)
}

func TestAggregate_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		findings []Finding
		score    int
		level    Level
	}{
		{
			name:     "medium_only_low",
			findings: []Finding{{AccountID: "a", Detector: DetectorFrequency, Severity: SeverityMedium}},
			score:    15,
			level:    LevelLow,
		},
		{
			name: "thirty_is_low",
			findings: []Finding{
				{AccountID: "a", Detector: DetectorFrequency, Severity: SeverityMedium},
				{AccountID: "a", Detector: DetectorLargeChange, Severity: SeverityMedium},
			},
			score: 30,
			level: LevelLow,
		},
		{
			name: "seventy_is_medium",
			findings: []Finding{
				{AccountID: "a", Detector: DetectorFrequency, Severity: SeverityHigh},
				{AccountID: "a", Detector: DetectorCycle, Severity: SeverityHigh},
			},
			score: 70,
			level: LevelMedium,
		},
		{
			name: "all_high",
			findings: []Finding{
				{AccountID: "a", Detector: DetectorFrequency, Severity: SeverityHigh},
				{AccountID: "a", Detector: DetectorDuplicate, Severity: SeverityHigh},
				{AccountID: "a", Detector: DetectorCycle, Severity: SeverityHigh},
				{AccountID: "a", Detector: DetectorLargeChange, Severity: SeverityHigh},
			},
			score: 130,
			level: LevelHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Aggregate(DefaultPolicy(), tt.findings)
			require.Len(t, got, 1)
			assert.Equal(t, tt.score, got[0].Score)
			assert.Equal(t, tt.level, got[0].Level)
		})
	}
}

func TestAggregate_StableOrderAndTopN(t *testing.T) {
	t.Parallel()

	var findings []Finding
	for i := range 12 {
		findings = append(findings, Finding{AccountID: fmt.Sprintf("acct-%02d", i), Detector: DetectorFrequency, Severity: SeverityMedium})
	}

	findings = append(findings, Finding{AccountID: "acct-11", Detector: DetectorCycle, Severity: SeverityHigh})

	got := Aggregate(DefaultPolicy(), findings)
	require.Len(t, got, 10)

	assert.Equal(t, "acct-11", got[0].AccountID)
	assert.Equal(t, 55, got[0].Score)

	// Ties keep first-appearance order.
	for i := 1; i < len(got); i++ {
		assert.Equal(t, fmt.Sprintf("acct-%02d", i-1), got[i].AccountID)
	}
}
