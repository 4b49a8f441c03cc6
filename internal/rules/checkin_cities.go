package rules

import (
	"fmt"
	"math"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// detectMultiCityCheckIns flags a user checking in at distant cities on the
// same day when the gap between the check-ins is too short for the distance,
// even at a generous travel speed. Unknown distance means no conclusion, so
// unresolvable cities are never flagged.
func detectMultiCityCheckIns(_ *detection.Rule, group []models.TrajectoryEvent, ctx *detection.EvalContext) []detection.Finding {
	var findings []detection.Finding

	byUser := groupByUser(group)
	for _, uid := range sortedUserIDs(byUser) {
		checkins := byUser[uid]
		if len(checkins) < 2 {
			continue
		}

		ordered := sortedByEarliestStart(checkins)
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				first := ordered[i].Base()
				second := ordered[j].Base()

				if first.Location.SameCity(second.Location) {
					continue
				}
				distance, ok := ctx.Resolver.Distance(first.Location, second.Location)
				if !ok || distance < ctx.MinSuspiciousDistanceKm {
					continue
				}

				required := distance/ctx.MaxTravelSpeedKmh + ctx.MinTravelHours

				// Most favorable reading of the uncertain windows: the
				// earliest one ends as late as possible and the later one
				// starts as early as possible.
				gap := math.Abs(temporal.TimeDifference(first.TimeWindow.LatestEnd, second.TimeWindow.EarliestStart, temporal.Hours))
				if gap >= required {
					gap = math.Abs(temporal.TimeDifference(second.TimeWindow.LatestEnd, first.TimeWindow.EarliestStart, temporal.Hours))
				}
				if gap >= required {
					continue
				}

				findings = append(findings, detection.Finding{
					detection.FindingPrimaryEvent: second.EventID,
					"other_event_id":              first.EventID,
					"user_id":                     uid,
					"city1":                       first.Location.City,
					"city2":                       second.Location.City,
					"distance_km":                 distance,
					"gap_hours":                   gap,
					"required_hours":              required,
				})
			}
		}
	}
	return findings
}

func formatMultiCityCheckInAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	userName := finding.String("user_id")
	for _, e := range group {
		if e.Base().EventID == finding.PrimaryEventID() {
			userName = fmt.Sprintf("%s (%s)", e.Base().UserName, e.Base().UserID)
			break
		}
	}

	city1 := finding.String("city1")
	city2 := finding.String("city2")

	details := fmt.Sprintf(
		"User %s checked in at %s and %s on the same day. The cities are %.0f km apart, "+
			"which needs at least %.1f hours of travel even at %s, but the check-ins leave "+
			"only %.1f hours between them. No normal itinerary explains this pattern.",
		userName, city1, city2, finding.Float("distance_km"),
		finding.Float("required_hours"), "high-speed-rail pace",
		finding.Float("gap_hours"),
	)

	return detection.AlertContent{
		Title:   fmt.Sprintf("Same-Day Check-Ins in Distant Cities: %s and %s", city1, city2),
		Details: details,
	}
}

func newMultiCityCheckInRule() *detection.Rule {
	return detection.NewDailyRule(
		"FD-CHECKIN-DIFFERENT-CITIES-SAME-DAY",
		"Same-Day Check-Ins in Distant Cities",
		"Detects customer check-ins in cities too far apart to travel between within the same day",
		models.SeverityHigh,
		[]models.EventType{models.EventTypeDailyCheckIn},
		detectMultiCityCheckIns,
		formatMultiCityCheckInAlert,
	)
}
