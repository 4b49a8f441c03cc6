package rules

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

// detectHighValueTaxi flags company-paid taxi rides whose amount exceeds the
// configured threshold.
func detectHighValueTaxi(_ *detection.Rule, group []models.TrajectoryEvent, ctx *detection.EvalContext) []detection.Finding {
	if len(group) != 1 {
		return nil
	}
	taxi, ok := group[0].(*models.TaxiEvent)
	if !ok || taxi.IsSelfPaid {
		return nil
	}

	threshold := ctx.TaxiHighValueThreshold
	if taxi.Amount <= threshold {
		return nil
	}

	return []detection.Finding{{
		detection.FindingPrimaryEvent: taxi.EventID,
		"amount":                      taxi.Amount,
		"threshold":                   threshold,
		"excess_amount":               taxi.Amount - threshold,
	}}
}

func formatHighValueTaxiAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	taxi := group[0].(*models.TaxiEvent)

	fromStr := "Unknown"
	if !taxi.FromLocation.IsZero() {
		fromStr = taxi.FromLocation.FullAddress()
	}
	toStr := "Unknown"
	if !taxi.ToLocation.IsZero() {
		toStr = taxi.ToLocation.FullAddress()
	}

	timeStr := taxi.TimeWindow.EarliestStart.Format(timeLayout)
	if exact, ok := taxi.TimeWindow.ExactStartTime(); ok {
		timeStr = exact.Format(timeLayout)
	}

	details := fmt.Sprintf(
		"User %s (%s) took an expensive taxi ride on %s from %s to %s costing %.2f yuan. "+
			"This exceeds the threshold of %.2f yuan by %.2f yuan.",
		taxi.UserName, taxi.UserID, timeStr, fromStr, toStr, taxi.Amount,
		finding.Float("threshold"), finding.Float("excess_amount"),
	)

	return detection.AlertContent{
		Title:   fmt.Sprintf("High-Value Taxi Ride: %.2f yuan", taxi.Amount),
		Details: details,
	}
}

func newHighValueTaxiRule() *detection.Rule {
	return detection.NewIndividualRule(
		"FD-TAXI-HIGH-VALUE",
		"High-Value Taxi Rides",
		"Detects unusually expensive taxi rides that may indicate fraud",
		models.SeverityMedium,
		[]models.EventType{models.EventTypeTaxi},
		detectHighValueTaxi,
		formatHighValueTaxiAlert,
	)
}
