package utils

import (
	"fmt"
	"time"
)

// Clock is the "now" every predicate and describer is measured against.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (f FixedClock) Now() time.Time {
	return time.Time(f)
}

type DateVerbosity int

const (
	DateShort DateVerbosity = iota
	DateMedium
	DateLong
)

const (
	APIDateLayout = "2006-01-02"

	layoutShort  = "2 Jan"
	layoutMedium = "2 Jan 2006"
	layoutLong   = "Monday, 2 January 2006"
	layoutClock  = "3:04 PM"
)

// FormatDateForAPI renders t's own calendar date as YYYY-MM-DD.
func FormatDateForAPI(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

func ParseAPIDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(APIDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse api date %q: %w", s, err)
	}
	return t, nil
}

func FormatDisplayDate(t time.Time, verbosity DateVerbosity) string {
	switch verbosity {
	case DateShort:
		return t.Format(layoutShort)
	case DateLong:
		return t.Format(layoutLong)
	default:
		return t.Format(layoutMedium)
	}
}

func FormatTimeOfDay(t time.Time) string {
	return t.Format(layoutClock)
}

func GetDurationInMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// IsAppointmentStartingSoon is true when start is at most threshold away.
// Appointments that already started also count.
func IsAppointmentStartingSoon(clock Clock, start time.Time, threshold time.Duration) bool {
	return start.Sub(clock.Now()) <= threshold
}

func IsFuture(clock Clock, t time.Time) bool {
	return t.After(clock.Now())
}

func IsPast(clock Clock, t time.Time) bool {
	return t.Before(clock.Now())
}

// IsSameDay compares calendar dates in a's location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsToday(clock Clock, t time.Time) bool {
	return IsSameDay(t, clock.Now())
}

// DescribeRelative produces "in 2 hours", "5 minutes ago", "just now".
func DescribeRelative(clock Clock, t time.Time) string {
	diff := t.Sub(clock.Now())
	future := diff > 0
	if diff < 0 {
		diff = -diff
	}

	if diff < time.Minute {
		return "just now"
	}

	var amount string
	switch {
	case diff < time.Hour:
		amount = plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		amount = plural(int(diff/time.Hour), "hour")
	default:
		amount = plural(int(diff/(24*time.Hour)), "day")
	}

	if future {
		return "in " + amount
	}
	return amount + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
