package rules

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

// detectFuelExceedTankCapacity flags fuel purchases larger than a vehicle
// tank can hold, which suggests several vehicles filled on one receipt. When
// the receipt does not record liters, the volume is estimated from the
// amount and the configured price per liter.
func detectFuelExceedTankCapacity(_ *detection.Rule, group []models.TrajectoryEvent, ctx *detection.EvalContext) []detection.Finding {
	if len(group) != 1 {
		return nil
	}
	fuel, ok := group[0].(*models.FuelEvent)
	if !ok {
		return nil
	}

	capacity := ctx.FuelTankCapacityLiters
	liters := fuel.FuelAmountLiters
	estimated := false
	if liters <= 0 {
		if ctx.FuelPricePerLiter <= 0 {
			return nil
		}
		liters = fuel.Amount / ctx.FuelPricePerLiter
		estimated = true
	}

	if liters <= capacity {
		return nil
	}

	return []detection.Finding{{
		detection.FindingPrimaryEvent: fuel.EventID,
		"amount":                      fuel.Amount,
		"fuel_amount_liters":          liters,
		"threshold":                   capacity,
		"excess_liters":               liters - capacity,
		"estimated":                   estimated,
	}}
}

func formatFuelExceedTankCapacityAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	fuel := group[0].(*models.FuelEvent)

	liters := finding.Float("fuel_amount_liters")
	capacity := finding.Float("threshold")

	qualifier := ""
	if est, _ := finding["estimated"].(bool); est {
		qualifier = " (estimated from the purchase amount)"
	}

	station := fuel.StationName
	if station == "" {
		station = fuel.Location.FullAddress()
	}

	details := fmt.Sprintf(
		"User %s (%s) purchased %.1f liters of fuel%s at %s on %s for %.2f yuan. "+
			"A standard vehicle tank holds at most %.0f liters, so this purchase exceeds "+
			"one tank by %.1f liters and may cover more than one vehicle.",
		fuel.UserName, fuel.UserID, liters, qualifier, station,
		fuel.TimeWindow.EarliestStart.Format(timeLayout), fuel.Amount,
		capacity, finding.Float("excess_liters"),
	)

	return detection.AlertContent{
		Title:   fmt.Sprintf("Fuel Purchase Exceeds Tank Capacity: %.1f L", liters),
		Details: details,
	}
}

func newFuelTankCapacityRule() *detection.Rule {
	return detection.NewIndividualRule(
		"FD-FUEL-EXCEED-TANK-CAPACITY",
		"Fuel Purchase Exceeds Tank Capacity",
		"Detects fuel purchases whose volume exceeds a normal vehicle tank, suggesting multiple vehicles on one receipt",
		models.SeverityMedium,
		[]models.EventType{models.EventTypeFuel},
		detectFuelExceedTankCapacity,
		formatFuelExceedTankCapacityAlert,
	)
}
