package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date key format.
const DateLayout = "2006-01-02"

// DateKey is a calendar date with no time-of-day component, e.g. "2025-07-01".
// Keys in DateLayout order lexicographically the same as chronologically.
type DateKey string

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// ParseDate validates s and returns it as a DateKey.
func ParseDate(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date. Zero time for an invalid key.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays offsets the date by n calendar days (n may be negative).
func (d DateKey) AddDays(n int) DateKey {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d DateKey) Before(other DateKey) bool {
	return d < other
}

// Valid reports whether d is a well-formed calendar date.
func (d DateKey) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

func (d DateKey) String() string {
	return string(d)
}
