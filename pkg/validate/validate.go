// Package validate holds the pure field validators used by the member
// import and invitation flows. All functions are side-effect free and
// report failures as booleans; callers attach the user-facing message.
package validate

import (
	"regexp"
	"time"
)

// emailPattern matches a simple local@domain.tld shape without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DateLayout is the accepted calendar date format for birth dates.
const DateLayout = "2006-01-02"

// Email reports whether s looks like a plausible email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone reports whether s is an acceptable phone number. The empty
// string is valid since the field is optional; otherwise all non-digit
// characters are stripped and the digit count must be between 8 and 15.
func Phone(s string) bool {
	if s == "" {
		return true
	}

	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8 && digits <= 15
}

// PastDate reports whether s is empty or a calendar date strictly in
// the past.
func PastDate(s string) bool {
	return PastDateAt(s, time.Now())
}

// PastDateAt is PastDate evaluated against an explicit reference time.
func PastDateAt(s string, now time.Time) bool {
	if s == "" {
		return true
	}

	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return parsed.Before(now)
}
