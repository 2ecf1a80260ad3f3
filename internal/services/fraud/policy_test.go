package fraud

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadPolicy_EmptyPathIsDefault(t *testing.T) {
	t.Parallel()

	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
	require.NoError(t, p.Validate())
}

func TestLoadPolicy_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writePolicy(t, `
cycle:
  high_weight: 50
cycle_gap: 30m
top_n: 3
`)

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 50, p.Cycle.HighWeight)
	assert.Equal(t, 20, p.Cycle.MediumWeight)
	assert.Equal(t, 2, p.Cycle.Flag)
	assert.Equal(t, 30*time.Minute, p.CycleGap)
	assert.Equal(t, 3, p.TopN)
	assert.Equal(t, DefaultPolicy().Frequency, p.Frequency)
}

func TestLoadPolicy_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadPolicy(writePolicy(t, "frequency: [1, 2"))
	require.Error(t, err)

	_, err = LoadPolicy(writePolicy(t, "frequency:\n  flag: 10\n  high: 5\n"))
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = LoadPolicy(writePolicy(t, "top_n: 0\n"))
	require.ErrorIs(t, err, ErrInvalidPolicy)
}
