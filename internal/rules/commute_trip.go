package rules

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// Commute-hour bounds, in fractional local hours.
const (
	morningCommuteStart = 7.0
	morningCommuteEnd   = 10.0
	eveningCommuteStart = 17.0
	eveningCommuteEnd   = 19.5
	lateNightExemptHour = 22.5 // company policy allows commutes after 22:30
)

// detectCommuteTrip flags weekday taxi rides between an employee's home and
// workplace during commute hours, which policy does not reimburse. Rides
// after 22:30 are exempt.
func detectCommuteTrip(_ *detection.Rule, group []models.TrajectoryEvent, ctx *detection.EvalContext) []detection.Finding {
	if len(group) != 1 {
		return nil
	}
	taxi, ok := group[0].(*models.TaxiEvent)
	if !ok || taxi.IsSelfPaid {
		return nil
	}
	if taxi.FromLocation.IsZero() || taxi.ToLocation.IsZero() {
		return nil
	}

	home, haveHome := ctx.HomeLocation(taxi.UserID)
	work, haveWork := ctx.WorkLocation(taxi.UserID)
	if !haveHome || !haveWork {
		return nil
	}

	eventTime := taxi.TimeWindow.EarliestStart
	if temporal.IsWeekend(eventTime) {
		return nil
	}
	if temporal.IsAfterHours(eventTime, lateNightExemptHour) {
		return nil
	}

	isMorning := temporal.IsWithinTimeRange(eventTime, morningCommuteStart, morningCommuteEnd)
	isEvening := temporal.IsWithinTimeRange(eventTime, eveningCommuteStart, eveningCommuteEnd)
	if !isMorning && !isEvening {
		return nil
	}

	maxKm := ctx.CommuteMatchDistanceKm
	homeToWork := ctx.Resolver.IsWithinDistance(taxi.FromLocation, home, maxKm) &&
		ctx.Resolver.IsWithinDistance(taxi.ToLocation, work, maxKm)
	workToHome := ctx.Resolver.IsWithinDistance(taxi.FromLocation, work, maxKm) &&
		ctx.Resolver.IsWithinDistance(taxi.ToLocation, home, maxKm)
	if !homeToWork && !workToHome {
		return nil
	}

	commuteType := "home-to-work"
	if workToHome {
		commuteType = "work-to-home"
	}
	commutePeriod := "morning"
	if isEvening {
		commutePeriod = "evening"
	}

	return []detection.Finding{{
		detection.FindingPrimaryEvent: taxi.EventID,
		"commute_type":                commuteType,
		"commute_period":              commutePeriod,
		"home_city":                   home.City,
		"work_city":                   work.City,
	}}
}

func formatCommuteTripAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	taxi := group[0].(*models.TaxiEvent)

	eventTime := taxi.TimeWindow.EarliestStart
	timeStr := eventTime.Format(timeLayout)
	weekday := eventTime.Weekday().String()

	details := fmt.Sprintf(
		"User %s (%s) used a taxi for commuting on %s (%s), which violates company policy. "+
			"The ride was a %s trip during %s commute hours.\n\n"+
			"Details:\n- From: %s\n- To: %s\n- Amount: %.2f yuan\n\n"+
			"Only commute trips after 22:30 are eligible for reimbursement.",
		taxi.UserName, taxi.UserID, timeStr, weekday,
		finding.String("commute_type"), finding.String("commute_period"),
		taxi.FromLocation.FullAddress(), taxi.ToLocation.FullAddress(), taxi.Amount,
	)

	return detection.AlertContent{
		Title:   fmt.Sprintf("Policy Violation: Commute Taxi (%.2f yuan)", taxi.Amount),
		Details: details,
	}
}

func newCommuteTripRule() *detection.Rule {
	return detection.NewIndividualRule(
		"FD-POLICY-COMMUTE-TRIP",
		"Workday Commute Taxi Usage",
		"Detects taxis used for regular commuting between home and workplace on workdays; late-night commutes after 22:30 are allowed",
		models.SeverityMedium,
		[]models.EventType{models.EventTypeTaxi},
		detectCommuteTrip,
		formatCommuteTripAlert,
	)
}
