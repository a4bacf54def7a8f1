// Package dates parses the date literals accepted in filter comparisons.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts of the canonical date and datetime renderings. They order
// correctly as text, which the post-fetch filter relies on.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(DateLayout, s)
}

// ParseDatetime parses a datetime in one of the accepted formats:
// RFC3339, YYYY-MM-DDTHH:MM, YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD HH:MM:SS.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		DatetimeLayout,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// Relative resolves today, yesterday and tomorrow against now.
func Relative(value string, now time.Time) (time.Time, bool) {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return anchor, true
	case "yesterday":
		return anchor.AddDate(0, 0, -1), true
	case "tomorrow":
		return anchor.AddDate(0, 0, 1), true
	}
	return time.Time{}, false
}

// Canonical rewrites a relative keyword or datetime literal into its
// canonical text form. Plain dates are returned unchanged. ok is false for
// values that are not dates.
func Canonical(value string, now time.Time) (string, bool) {
	if t, ok := Relative(value, now); ok {
		return t.Format(DateLayout), true
	}
	if IsValidDate(value) {
		return value, true
	}
	if t, err := ParseDatetime(value); err == nil {
		return t.Format(DatetimeLayout), true
	}
	return "", false
}
