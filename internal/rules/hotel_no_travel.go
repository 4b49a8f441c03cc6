package rules

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// detectHotelNoTravel flags hotel stays in a city other than the user's work
// city when no flight or train into that city ends within the justification
// window before check-in. Users without a known work city are skipped: an
// unknown baseline cannot support a conclusion.
func detectHotelNoTravel(_ *detection.Rule, group []models.TrajectoryEvent, ctx *detection.EvalContext) []detection.Finding {
	var hotels []*models.HotelEvent
	var travels []models.TrajectoryEvent
	for _, e := range group {
		if h, ok := e.(*models.HotelEvent); ok {
			hotels = append(hotels, h)
			continue
		}
		if _, _, ok := transportEndpoints(e); ok {
			travels = append(travels, e)
		}
	}
	if len(hotels) == 0 {
		return nil
	}

	var findings []detection.Finding
	for _, hotel := range hotels {
		work, known := ctx.WorkLocation(hotel.UserID)
		if !known {
			continue
		}
		if hotel.Location.SameCity(work) {
			continue
		}

		stayDays := temporal.TimeDifference(hotel.TimeWindow.EarliestStart, hotel.TimeWindow.LatestEnd, temporal.Days)
		if stayDays < ctx.MinSuspiciousStayNights {
			continue
		}

		if hasArrivalIntoCity(hotel, travels, ctx.IntercityJustifyWindowHr) {
			continue
		}

		findings = append(findings, detection.Finding{
			detection.FindingPrimaryEvent: hotel.EventID,
			"hotel_city":                  hotel.Location.City,
			"work_city":                   work.City,
			"stay_duration":               stayDays,
		})
	}
	return findings
}

// hasArrivalIntoCity reports whether some flight or train of the same user
// arrives in the hotel city within windowHours before check-in.
func hasArrivalIntoCity(hotel *models.HotelEvent, travels []models.TrajectoryEvent, windowHours float64) bool {
	for _, travel := range travels {
		if travel.Base().UserID != hotel.UserID {
			continue
		}
		_, to, _ := transportEndpoints(travel)
		if !to.SameCity(hotel.Location) {
			continue
		}
		// Hours from the travel's latest possible end to the earliest
		// possible check-in.
		gap := temporal.TimeDifference(travel.Base().TimeWindow.LatestEnd, hotel.TimeWindow.EarliestStart, temporal.Hours)
		if gap >= 0 && gap <= windowHours {
			return true
		}
	}
	return false
}

func formatHotelNoTravelAlert(_ *detection.Rule, group []models.TrajectoryEvent, finding detection.Finding, _ *detection.EvalContext) detection.AlertContent {
	var hotel *models.HotelEvent
	for _, e := range group {
		if h, ok := e.(*models.HotelEvent); ok && h.EventID == finding.PrimaryEventID() {
			hotel = h
			break
		}
	}

	hotelCity := finding.String("hotel_city")
	checkIn := ""
	hotelName := "a hotel"
	userStr := "Unknown"
	amount := 0.0
	if hotel != nil {
		checkIn = hotel.TimeWindow.EarliestStart.Format(timeLayout)
		if hotel.HotelName != "" {
			hotelName = hotel.HotelName
		}
		userStr = fmt.Sprintf("%s (%s)", hotel.UserName, hotel.UserID)
		amount = hotel.Amount
	}

	details := fmt.Sprintf(
		"User %s stayed %.1f nights at %s in %s starting %s (%.2f yuan), but their work "+
			"city is %s and no flight or train into %s ends within 24 hours before check-in. "+
			"There is no travel record justifying this stay.",
		userStr, finding.Float("stay_duration"), hotelName, hotelCity, checkIn, amount,
		finding.String("work_city"), hotelCity,
	)

	return detection.AlertContent{
		Title:   fmt.Sprintf("Hotel Stay Without Travel Record: %s", hotelCity),
		Details: details,
	}
}

func newHotelNoTravelRule() *detection.Rule {
	return detection.NewTimeWindowRule(
		"FD-HOTEL-NO-TRAVEL",
		"Hotel Stay Without Arriving Travel",
		"Detects hotel stays outside the user's work city with no flight or train into the hotel city shortly before check-in",
		models.SeverityMedium,
		[]models.EventType{models.EventTypeHotel, models.EventTypeFlight, models.EventTypeRailway},
		3,
		detectHotelNoTravel,
		formatHotelNoTravelAlert,
	)
}
