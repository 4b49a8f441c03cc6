package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// transportEndpoints extracts the origin and destination of an intercity
// transport event; ok is false for other variants.
func transportEndpoints(e models.TrajectoryEvent) (from, to models.Location, ok bool) {
	switch t := e.(type) {
	case *models.FlightEvent:
		return t.FromLocation, t.ToLocation, true
	case *models.RailwayEvent:
		return t.FromLocation, t.ToLocation, true
	}
	return models.Location{}, models.Location{}, false
}

// cityTransition is one change of taxi city for a user within a day.
type cityTransition struct {
	fromCity    string
	toCity      string
	fromTime    time.Time // latest end of the ride before the change
	toTime      time.Time // earliest start of the ride after the change
	fromEventID string
	toEventID   string
}

// detectTaxiMulticity flags users who take taxis in more than one city on
// the same day without any flight or train that explains the move between
// cities.
func detectTaxiMulticity(_ *detection.Rule, group []models.TrajectoryEvent, _ *detection.EvalContext) []detection.Finding {
	var findings []detection.Finding

	byUser := groupByUser(group)
	for _, uid := range sortedUserIDs(byUser) {
		userEvents := byUser[uid]

		var taxis []*models.TaxiEvent
		var transports []models.TrajectoryEvent
		for _, e := range userEvents {
			if taxi, ok := e.(*models.TaxiEvent); ok {
				if !taxi.FromLocation.IsZero() {
					taxis = append(taxis, taxi)
				}
				continue
			}
			if _, _, ok := transportEndpoints(e); ok {
				transports = append(transports, e)
			}
		}
		if len(taxis) < 2 {
			continue
		}

		sortedTaxis := make([]models.TrajectoryEvent, len(taxis))
		for i, t := range taxis {
			sortedTaxis[i] = t
		}
		sortedTaxis = sortedByEarliestStart(sortedTaxis)

		var transitions []cityTransition
		currentCity := sortedTaxis[0].(*models.TaxiEvent).FromLocation.City
		for i := 1; i < len(sortedTaxis); i++ {
			prev := sortedTaxis[i-1].(*models.TaxiEvent)
			next := sortedTaxis[i].(*models.TaxiEvent)
			nextCity := next.FromLocation.City
			if nextCity == currentCity {
				continue
			}
			transitions = append(transitions, cityTransition{
				fromCity:    currentCity,
				toCity:      nextCity,
				fromTime:    prev.TimeWindow.LatestEnd,
				toTime:      next.TimeWindow.EarliestStart,
				fromEventID: prev.EventID,
				toEventID:   next.EventID,
			})
			currentCity = nextCity
		}

		for _, tr := range transitions {
			if hasBridgingTransport(tr, transports) {
				continue
			}
			gap := temporal.TimeDifference(tr.fromTime, tr.toTime, temporal.Hours)
			findings = append(findings, detection.Finding{
				detection.FindingPrimaryEvent: tr.toEventID,
				"user_id":                     uid,
				"from_city":                   tr.fromCity,
				"to_city":                     tr.toCity,
				"from_event_id":               tr.fromEventID,
				"gap_hours":                   gap,
			})
		}
	}
	return findings
}

// hasBridgingTransport reports whether any flight or train connects the
// transition's cities with a time window that could explain the move.
func hasBridgingTransport(tr cityTransition, transports []models.TrajectoryEvent) bool {
	for _, e := range transports {
		from, to, _ := transportEndpoints(e)
		if from.City != tr.fromCity || to.City != tr.toCity {
			continue
		}
		w := e.Base().TimeWindow
		if w.EarliestStart.Before(tr.toTime) && w.LatestEnd.After(tr.fromTime) {
			return true
		}
	}
	return false
}

func formatTaxiMulticityAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	var user *models.EventBase
	primaryID := finding.PrimaryEventID()
	for _, e := range group {
		if e.Base().EventID == primaryID {
			base := e.Base()
			user = &base
			break
		}
	}

	fromCity := finding.String("from_city")
	toCity := finding.String("to_city")

	var b strings.Builder
	if user != nil {
		fmt.Fprintf(&b, "User %s (%s) from %s took taxi rides in %s and then %s ",
			user.UserName, user.UserID, user.Department, fromCity, toCity)
	} else {
		fmt.Fprintf(&b, "User %s took taxi rides in %s and then %s ",
			finding.String("user_id"), fromCity, toCity)
	}
	fmt.Fprintf(&b,
		"with no recorded flight or train between the cities (%.1f hours between rides). "+
			"This may indicate missing transportation records, expenses claimed by someone "+
			"else while traveling, or multiple people using the same employee ID.",
		finding.Float("gap_hours"))

	return detection.AlertContent{
		Title:   fmt.Sprintf("Multi-City Taxi Use Without Intercity Transport: %s → %s", fromCity, toCity),
		Details: b.String(),
	}
}

func newTaxiMulticityRule() *detection.Rule {
	return detection.NewDailyRule(
		"FD-TAXI-MULTICITY-NO-INTERCITY-TRANSPORT",
		"Multi-City Taxi Use Without Intercity Transport",
		"Detects taxi rides in different cities with no flight or train record explaining how the user moved between them",
		models.SeverityMedium,
		[]models.EventType{models.EventTypeTaxi, models.EventTypeFlight, models.EventTypeRailway},
		detectTaxiMulticity,
		formatTaxiMulticityAlert,
	)
}
