// Package time holds the calendar helpers used across weather code.
//
// Timestamps in this project are naive local wall clock values: a reading at
// 2024-01-01T13:00 in America/Denver is stored as 2024-01-01 13:00 with no
// offset. In Go they are carried as time.Time in UTC so that truncation and
// comparison never apply a zone shift
package time

import (
	"time"

	perr "weatherjar/internal/platform/errors"
)

// Layouts used on the wire and on the command line
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	HourLayout  = "2006-01-02T15:04"
)

// Day is one calendar day
const Day = 24 * time.Hour

// ParseDate parses YYYY-MM-DD into midnight of that naive day
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, perr.InvalidDatef("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses YYYY-MM into the first day of that month
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, perr.InvalidDatef("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

// ParseHour parses an hourly timestamp like 2024-01-01T13:00
func ParseHour(s string) (time.Time, error) {
	t, err := time.ParseInLocation(HourLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, perr.InvalidDatef("invalid hour %q: expected YYYY-MM-DDTHH:MM", s)
	}
	return t, nil
}

// Naive drops the zone of t and keeps its wall clock reading, in UTC
func Naive(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfDay truncates a naive timestamp to midnight
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates a naive timestamp to the first of its month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in loc as a naive date
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return StartOfDay(Naive(now.In(loc)))
}

// Days returns every day from start to end inclusive. Empty when end < start
func Days(start, end time.Time) []time.Time {
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start)/Day)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// FormatDate renders a naive date as YYYY-MM-DD
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatMonth renders a naive date as YYYY-MM
func FormatMonth(t time.Time) string { return t.Format(MonthLayout) }
