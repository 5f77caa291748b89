// Package dates handles calendar-day values stored without a time zone.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the storage format for calendar days.
const Layout = "2006-01-02"

var layouts = []string{
	Layout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse reads a calendar day from YYYY-MM-DD or an RFC3339 timestamp.
// The time-of-day and zone are discarded: the result is midnight UTC of
// the written date.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

// Normalize parses s and formats it back as YYYY-MM-DD.
func Normalize(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// Day truncates t to its calendar day, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current local calendar day.
func Today() time.Time {
	return Day(time.Now())
}
