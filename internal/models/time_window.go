package models

import (
	"fmt"
	"time"
)

// TimeWindow is an uncertainty-aware interval: the event started somewhere
// in [EarliestStart, LatestStart] and ended somewhere in
// [EarliestEnd, LatestEnd]. Windows are constructed once per event and never
// mutated afterwards.
type TimeWindow struct {
	EarliestStart time.Time `json:"earliestStart"`
	LatestStart   time.Time `json:"latestStart"`
	EarliestEnd   time.Time `json:"earliestEnd"`
	LatestEnd     time.Time `json:"latestEnd"`
}

// NewTimeWindow creates a validated time window. The four-way ordering
// invariant (earliest_start ≤ latest_start, earliest_end ≤ latest_end,
// earliest_start ≤ earliest_end, latest_start ≤ latest_end) is enforced here
// and nowhere else.
func NewTimeWindow(earliestStart, latestStart, earliestEnd, latestEnd time.Time) (TimeWindow, error) {
	w := TimeWindow{
		EarliestStart: earliestStart,
		LatestStart:   latestStart,
		EarliestEnd:   earliestEnd,
		LatestEnd:     latestEnd,
	}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// NewExactTimeWindow creates a window with no start/end uncertainty.
func NewExactTimeWindow(start, end time.Time) (TimeWindow, error) {
	return NewTimeWindow(start, start, end, end)
}

// Validate checks the four-way ordering invariant.
func (w TimeWindow) Validate() error {
	if w.LatestStart.Before(w.EarliestStart) {
		return fmt.Errorf("time window: latest start %s before earliest start %s", w.LatestStart, w.EarliestStart)
	}
	if w.LatestEnd.Before(w.EarliestEnd) {
		return fmt.Errorf("time window: latest end %s before earliest end %s", w.LatestEnd, w.EarliestEnd)
	}
	if w.EarliestEnd.Before(w.EarliestStart) {
		return fmt.Errorf("time window: earliest end %s before earliest start %s", w.EarliestEnd, w.EarliestStart)
	}
	if w.LatestEnd.Before(w.LatestStart) {
		return fmt.Errorf("time window: latest end %s before latest start %s", w.LatestEnd, w.LatestStart)
	}
	return nil
}

// IsExact reports whether the window carries no uncertainty at either bound.
func (w TimeWindow) IsExact() bool {
	return w.EarliestStart.Equal(w.LatestStart) && w.EarliestEnd.Equal(w.LatestEnd)
}

// ExactStartTime returns the start time of an uncertainty-free window; ok is
// false when either bound is uncertain.
func (w TimeWindow) ExactStartTime() (time.Time, bool) {
	if !w.IsExact() {
		return time.Time{}, false
	}
	return w.EarliestStart, true
}

// ExactEndTime returns the end time of an uncertainty-free window; ok is
// false when either bound is uncertain.
func (w TimeWindow) ExactEndTime() (time.Time, bool) {
	if !w.IsExact() {
		return time.Time{}, false
	}
	return w.EarliestEnd, true
}
