package detection

import (
	"fmt"
	"sort"
	"time"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// EventGroup is one unit of work for a detect function. Key identifies the
// group in alerts and diagnostics.
type EventGroup struct {
	Key    string
	Events []models.TrajectoryEvent
}

// GroupingStrategy partitions an event collection into the groups a detect
// function sees. Strategies must be total (no matching event is dropped) and
// deterministic given the same input order.
type GroupingStrategy interface {
	Name() string
	Partition(events []models.TrajectoryEvent) []EventGroup
}

// IndividualGrouping puts every event in its own singleton group.
type IndividualGrouping struct{}

func (IndividualGrouping) Name() string { return "individual" }

func (IndividualGrouping) Partition(events []models.TrajectoryEvent) []EventGroup {
	groups := make([]EventGroup, 0, len(events))
	for _, e := range events {
		groups = append(groups, EventGroup{
			Key:    e.Base().EventID,
			Events: []models.TrajectoryEvent{e},
		})
	}
	return groups
}

// DailyGrouping buckets events by the calendar date of their earliest
// possible start, in the timestamp's own offset. Groups are not scoped by
// user; detect functions do their own per-user bookkeeping. Within a group
// the original event order is preserved.
type DailyGrouping struct{}

func (DailyGrouping) Name() string { return "daily" }

func (DailyGrouping) Partition(events []models.TrajectoryEvent) []EventGroup {
	byDate := make(map[string][]models.TrajectoryEvent)
	for _, e := range events {
		date := e.Base().TimeWindow.EarliestStart.Format("2006-01-02")
		byDate[date] = append(byDate[date], e)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	groups := make([]EventGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, EventGroup{Key: date, Events: byDate[date]})
	}
	return groups
}

// TimeWindowGrouping builds one group per event (the anchor), containing
// every event whose earliest start lies within WindowDays of the anchor's.
// The default is symmetric ±WindowDays; ForwardOnly restricts the group to
// the anchor's N-day lookahead. Groups overlap, so findings from this
// strategy are deduplicated by the engine.
type TimeWindowGrouping struct {
	WindowDays  int
	ForwardOnly bool
}

func (g TimeWindowGrouping) Name() string {
	return fmt.Sprintf("time_window_%dd", g.WindowDays)
}

func (g TimeWindowGrouping) Partition(events []models.TrajectoryEvent) []EventGroup {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]models.TrajectoryEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Base().TimeWindow.EarliestStart.Before(sorted[j].Base().TimeWindow.EarliestStart)
	})

	window := time.Duration(g.WindowDays) * 24 * time.Hour
	groups := make([]EventGroup, 0, len(sorted))
	for _, anchor := range sorted {
		anchorStart := anchor.Base().TimeWindow.EarliestStart
		lower := anchorStart.Add(-window)
		if g.ForwardOnly {
			lower = anchorStart
		}
		upper := anchorStart.Add(window)

		var members []models.TrajectoryEvent
		for _, e := range sorted {
			start := e.Base().TimeWindow.EarliestStart
			if start.Before(lower) {
				continue
			}
			if start.After(upper) {
				break
			}
			members = append(members, e)
		}
		groups = append(groups, EventGroup{
			Key:    "window:" + anchor.Base().EventID,
			Events: members,
		})
	}
	return groups
}
