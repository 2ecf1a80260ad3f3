package ledger

import (
	"fmt"
	"time"
)

// Window is the closed time range [From, To] scanned by analytics.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// MaxWindowHours bounds every hour-based window: one leap year.
const MaxWindowHours = 24 * 366

// ValidateHours accepts 1..MaxWindowHours.
func ValidateHours(hours int) error {
	if hours <= 0 || hours > MaxWindowHours {
		return fmt.Errorf("%w: hours must be in 1..%d, got %d", ErrInvalidInput, MaxWindowHours, hours)
	}

	return nil
}

// LastHours returns [now-hours, now].
func LastHours(now time.Time, hours int) (Window, error) {
	err := ValidateHours(hours)
	if err != nil {
		return Window{}, err
	}

	return Window{From: now.Add(-time.Duration(hours) * time.Hour), To: now}, nil
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}
