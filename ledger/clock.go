package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME OF DAY - wall-clock cutoffs (punctuality, overtime)
// =============================================================================

// TimeOfDay is a wall-clock instant without a date, used for the
// configured daily cutoffs.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "15:04:05" or "15:04".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q (use HH:MM:SS)", s)
}

// MustTimeOfDay is ParseTimeOfDay for constants; panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// On anchors the time of day to the calendar day containing t, in t's
// location.
func (td TimeOfDay) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), td.Hour, td.Minute, td.Second, 0, t.Location())
}

func (td TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", td.Hour, td.Minute, td.Second)
}

// =============================================================================
// DAY HELPERS
// =============================================================================

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// =============================================================================
// DURATION FORMATTING - "1h 5m" report style
// =============================================================================

// FormatMinutes renders a duration the way reports show it: "2h 5m",
// "45m", or "0m". Sub-minute remainders are dropped.
func FormatMinutes(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Minutes())
	if total >= 60 {
		return fmt.Sprintf("%dh %dm", total/60, total%60)
	}
	return fmt.Sprintf("%dm", total)
}
