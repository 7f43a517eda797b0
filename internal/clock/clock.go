package clock

import (
	"fmt"
	"time"
)

// DayKeyLayout is the calendar day key format used throughout storage.
const DayKeyLayout = "2006-01-02"

// Clock provides time information for usage accounting and scheduling.
// This interface allows time to be mocked in tests.
type Clock interface {
	Now() time.Time
}

// RealClock provides actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock provides fixed time for testing.
type TestClock struct {
	CurrentTime time.Time
}

// Now returns the test time.
func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}

// Advance moves the test time forward.
func (t *TestClock) Advance(d time.Duration) {
	t.CurrentTime = t.CurrentTime.Add(d)
}

// DayKey returns the local calendar day key for t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// NextMidnight returns the first instant of the next local day after t.
func NextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// ParseWakeTime parses a "HH:MM" wall-clock string into minutes since midnight.
func ParseWakeTime(s string) (int, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid wake time %q: %w", s, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatMinutes formats a whole-minute count as "1h 30m" or "45m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
