// Package dates handles the calendar-day values used across the API.
// Dates travel as "YYYY-MM-DD" strings and compare at day granularity.
package dates

import (
	"time"
)

const Layout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC day.
func Today() time.Time {
	return Day(time.Now())
}
