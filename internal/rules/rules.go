// Package rules contains the built-in fraud-pattern rules. Each rule lives
// in its own file as a detect function, a format function, and a descriptor
// constructor; Register wires them all into a registry in severity-review
// order, which is also the order alerts are reported in.
package rules

import (
	"sort"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

// All returns the built-in rules in declaration order.
func All() []*detection.Rule {
	return []*detection.Rule{
		newHighValueTaxiRule(),
		newFuelTankCapacityRule(),
		newCommuteTripRule(),
		newTaxiMulticityRule(),
		newMultiCityCheckInRule(),
		newFlightRailwayOverlapRule(),
		newHotelNoTravelRule(),
	}
}

// Register adds every built-in rule to the registry.
func Register(reg *detection.Registry) error {
	for _, rule := range All() {
		if err := reg.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

// sortedByEarliestStart returns a copy of the events ordered by the earliest
// possible start time. The sort is stable so ties keep input order.
func sortedByEarliestStart(events []models.TrajectoryEvent) []models.TrajectoryEvent {
	out := make([]models.TrajectoryEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Base().TimeWindow.EarliestStart.Before(out[j].Base().TimeWindow.EarliestStart)
	})
	return out
}

// groupByUser buckets events by user id, preserving input order per user.
func groupByUser(events []models.TrajectoryEvent) map[string][]models.TrajectoryEvent {
	byUser := make(map[string][]models.TrajectoryEvent)
	for _, e := range events {
		uid := e.Base().UserID
		byUser[uid] = append(byUser[uid], e)
	}
	return byUser
}

// sortedUserIDs returns the bucket keys in a deterministic order.
func sortedUserIDs(byUser map[string][]models.TrajectoryEvent) []string {
	ids := make([]string, 0, len(byUser))
	for uid := range byUser {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids
}

const timeLayout = "2006-01-02 15:04"
