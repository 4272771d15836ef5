package workday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for civil dates (date_of_working).
const DateLayout = "2006-01-02"

// Clock abstracts the wall clock so callers can pin "now" in tests.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// Resolver owns every piece of day-boundary arithmetic for attendance.
// Civil dates are represented as time.Time values at midnight UTC so they
// round-trip through a Postgres DATE column unchanged.
type Resolver struct {
	loc    *time.Location
	cutoff time.Duration
	clock  Clock
}

// NewResolver builds a resolver for loc with the day cutoff at
// cutoffHour:cutoffMinute civil time. A nil clock falls back to SystemClock.
func NewResolver(loc *time.Location, cutoffHour, cutoffMinute int, clock Clock) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Resolver{
		loc:    loc,
		cutoff: time.Duration(cutoffHour)*time.Hour + time.Duration(cutoffMinute)*time.Minute,
		clock:  clock,
	}
}

// Location returns the fixed civil timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant expressed in the civil timezone.
func (r *Resolver) Now() time.Time {
	return r.clock.Now().In(r.loc)
}

// Today returns the civil date of "now".
func (r *Resolver) Today() time.Time {
	return r.DateOf(r.clock.Now())
}

// DateOf returns the civil date that instant t falls on.
func (r *Resolver) DateOf(t time.Time) time.Time {
	local := t.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// dayStart is the first instant of the civil date; DateOf maps it back.
func (r *Resolver) dayStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
}

// CutoffInstant returns the end-of-working-day instant for the civil date.
func (r *Resolver) CutoffInstant(date time.Time) time.Time {
	return r.dayStart(date).Add(r.cutoff)
}

// IsCutoffSignature reports whether t carries the hour/minute of the
// cutoff in the civil timezone. Auto-closed records are recognised this way.
func (r *Resolver) IsCutoffSignature(t time.Time) bool {
	local := t.In(r.loc)
	h := int(r.cutoff / time.Hour)
	m := int((r.cutoff % time.Hour) / time.Minute)
	return local.Hour() == h && local.Minute() == m
}

// DayOfWeek returns the English weekday label of the civil date.
func (r *Resolver) DayOfWeek(date time.Time) string {
	return date.Weekday().String()
}

// AddDays shifts a civil date by n days.
func (r *Resolver) AddDays(date time.Time, n int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day()+n, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD civil date.
func (r *Resolver) ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func (r *Resolver) FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// FixedZone parses an offset such as "+05:30" or "-04:00" into a fixed
// location named name.
func FixedZone(name, offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" {
		return nil, fmt.Errorf("empty timezone offset")
	}

	sign := 1
	switch offset[0] {
	case '+':
		offset = offset[1:]
	case '-':
		sign = -1
		offset = offset[1:]
	}

	h, m, err := parseClock(offset)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset %q: %w", offset, err)
	}
	if h > 14 {
		return nil, fmt.Errorf("invalid timezone offset %q: hours out of range", offset)
	}

	if name == "" {
		name = "UTC" + offset
	}
	return time.FixedZone(name, sign*(h*3600+m*60)), nil
}

// ParseCutoff parses the "HH:MM" day cutoff.
func ParseCutoff(s string) (int, int, error) {
	h, m, err := parseClock(strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cutoff %q: %w", s, err)
	}
	if h > 23 {
		return 0, 0, fmt.Errorf("invalid cutoff %q: hour out of range", s)
	}
	return h, m, nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute")
	}
	return h, m, nil
}
