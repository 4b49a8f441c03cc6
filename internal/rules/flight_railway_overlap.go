package rules

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// minFlightRailwayOverlapHours filters out minor scheduling overlaps that
// the uncertain windows would otherwise flag.
const minFlightRailwayOverlapHours = 0.5

// detectFlightRailwayOverlap flags a user claiming to be on a flight and a
// train at the same time, which is physically impossible.
func detectFlightRailwayOverlap(_ *detection.Rule, group []models.TrajectoryEvent, _ *detection.EvalContext) []detection.Finding {
	var findings []detection.Finding

	byUser := groupByUser(group)
	for _, uid := range sortedUserIDs(byUser) {
		var flights []*models.FlightEvent
		var railways []*models.RailwayEvent
		for _, e := range byUser[uid] {
			switch t := e.(type) {
			case *models.FlightEvent:
				flights = append(flights, t)
			case *models.RailwayEvent:
				railways = append(railways, t)
			}
		}
		if len(flights) == 0 || len(railways) == 0 {
			continue
		}

		for _, flight := range flights {
			for _, railway := range railways {
				if !temporal.Overlaps(flight.TimeWindow, railway.TimeWindow) {
					continue
				}
				overlapHours := temporal.OverlapDuration(flight.TimeWindow, railway.TimeWindow, temporal.Hours)
				if overlapHours < minFlightRailwayOverlapHours {
					continue
				}
				findings = append(findings, detection.Finding{
					detection.FindingPrimaryEvent: flight.EventID,
					"secondary_event_id":          railway.EventID,
					"user_id":                     uid,
					"overlap_hours":               overlapHours,
					"flight_no":                   flight.FlightNo,
					"train_number":                railway.TrainNumber,
					"flight_route":                flight.FromLocation.City + " → " + flight.ToLocation.City,
					"railway_route":               railway.FromLocation.City + " → " + railway.ToLocation.City,
				})
			}
		}
	}
	return findings
}

func formatFlightRailwayOverlapAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	var flight *models.FlightEvent
	for _, e := range group {
		if f, ok := e.(*models.FlightEvent); ok && f.EventID == finding.PrimaryEventID() {
			flight = f
			break
		}
	}

	userName := finding.String("user_id")
	department := ""
	if flight != nil {
		userName = fmt.Sprintf("%s (%s)", flight.UserName, flight.UserID)
		department = flight.Department
	}

	details := fmt.Sprintf(
		"User %s from %s has a flight %s (%s) and a train %s (%s) whose time windows "+
			"overlap by %.1f hours. One person cannot be on both; this indicates a "+
			"fraudulent claim or a data entry error.",
		userName, department,
		finding.String("flight_no"), finding.String("flight_route"),
		finding.String("train_number"), finding.String("railway_route"),
		finding.Float("overlap_hours"),
	)

	return detection.AlertContent{
		Title: fmt.Sprintf("Overlapping Flight and Train: %s / %s",
			finding.String("flight_no"), finding.String("train_number")),
		Details: details,
	}
}

func newFlightRailwayOverlapRule() *detection.Rule {
	return detection.NewTimeWindowRule(
		"FD-FLIGHT-RAILWAY-SAME-TIME",
		"Overlapping Flight and Railway Journeys",
		"Detects a user claiming to be on a flight and a train during overlapping time windows",
		models.SeverityHigh,
		[]models.EventType{models.EventTypeFlight, models.EventTypeRailway},
		1,
		detectFlightRailwayOverlap,
		formatFlightRailwayOverlapAlert,
	)
}
