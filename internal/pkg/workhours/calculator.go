// Package workhours derives working duration and the completion flag of an
// attendance day. Everything here is pure.
package workhours

import (
	"strconv"
	"strings"
	"time"
)

// DefaultExpected applies when an employee has no usable working-hours setting.
const DefaultExpected = 8 * time.Hour

// ParseExpected parses an "HH:MM" expected daily duration. It returns false
// for empty, zero or malformed input.
func ParseExpected(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}

	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if d <= 0 || d > 24*time.Hour {
		return 0, false
	}
	return d, true
}

// ExpectedOrDefault resolves the expected duration for a workingHours
// setting. fellBack is true when the setting was present but unusable, so the
// caller can log it.
func ExpectedOrDefault(workingHours *string) (expected time.Duration, fellBack bool) {
	if workingHours == nil || strings.TrimSpace(*workingHours) == "" {
		return DefaultExpected, false
	}
	if d, ok := ParseExpected(*workingHours); ok {
		return d, false
	}
	return DefaultExpected, true
}

// Worked returns logout - login - breakDuration. It may be negative under
// clock skew.
func Worked(login, logout time.Time, breakDuration time.Duration) time.Duration {
	return logout.Sub(login) - breakDuration
}

// Completed reports whether the worked duration reaches expected.
// Non-positive worked time never completes.
func Completed(login, logout time.Time, breakDuration, expected time.Duration) bool {
	worked := Worked(login, logout, breakDuration)
	if worked <= 0 {
		return false
	}
	return worked >= expected
}
