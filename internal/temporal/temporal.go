// Package temporal provides the clock and calendar predicates shared by all
// detection rules: window overlap under uncertainty, signed durations in a
// requested unit, and working-hours checks against local wall-clock time.
package temporal

import (
	"time"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// Unit selects how durations are reported.
type Unit string

const (
	Seconds Unit = "seconds"
	Minutes Unit = "minutes"
	Hours   Unit = "hours"
	Days    Unit = "days"
)

// Default working-hours bounds, in local wall-clock hours.
const (
	DefaultWorkStartHour = 9.0
	DefaultWorkEndHour   = 18.0
)

// Overlaps reports whether the possible intervals of two windows intersect.
// This is the optimistic test: it is true whenever the events could have
// coincided, which is the right direction for flagging possible physical
// conflicts under uncertainty.
func Overlaps(w1, w2 models.TimeWindow) bool {
	return !w1.EarliestStart.After(w2.LatestEnd) && !w2.EarliestStart.After(w1.LatestEnd)
}

// OverlapDuration returns the length of the possible-interval intersection
// [max(earliest starts), min(latest ends)] in the requested unit, clamped to
// zero when the windows do not overlap.
func OverlapDuration(w1, w2 models.TimeWindow, unit Unit) float64 {
	start := w1.EarliestStart
	if w2.EarliestStart.After(start) {
		start = w2.EarliestStart
	}
	end := w1.LatestEnd
	if w2.LatestEnd.Before(end) {
		end = w2.LatestEnd
	}
	if !end.After(start) {
		return 0
	}
	return InUnit(end.Sub(start), unit)
}

// TimeDifference returns the signed duration from t1 to t2 in the requested
// unit. Positive means t2 is after t1.
func TimeDifference(t1, t2 time.Time, unit Unit) float64 {
	return InUnit(t2.Sub(t1), unit)
}

// InUnit converts a duration into the requested unit. Unknown units fall
// back to hours.
func InUnit(d time.Duration, unit Unit) float64 {
	switch unit {
	case Seconds:
		return d.Seconds()
	case Minutes:
		return d.Minutes()
	case Days:
		return d.Hours() / 24
	default:
		return d.Hours()
	}
}

// clockHour returns the local wall-clock hour as a fraction, e.g. 9.5 for
// 09:30.
func clockHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0
}

// IsWithinTimeRange reports whether the timestamp's local wall-clock hour
// falls in [startHour, endHour). Hours are fractional, so 19.5 means 19:30.
func IsWithinTimeRange(t time.Time, startHour, endHour float64) bool {
	h := clockHour(t)
	return h >= startHour && h < endHour
}

// IsBusinessHours reports whether the timestamp falls within working hours.
// Weekends are not considered here; business hours and weekend are
// independent flags.
func IsBusinessHours(t time.Time, startHour, endHour float64) bool {
	return IsWithinTimeRange(t, startHour, endHour)
}

// IsAfterHours reports whether the timestamp is past the end of the working
// day.
func IsAfterHours(t time.Time, endHour float64) bool {
	return clockHour(t) >= endHour
}

// IsWeekend reports whether the timestamp falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
