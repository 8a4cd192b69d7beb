package services

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses YYYY-MM-DD, falling back to today's date when s is empty.
func ParseDay(field, s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day(now), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid(field, "expected YYYY-MM-DD")
	}
	return t, nil
}
