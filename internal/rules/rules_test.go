package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

// Test data builders shared by the rule tests.

func exactWindow(start, end time.Time) models.TimeWindow {
	return models.TimeWindow{
		EarliestStart: start, LatestStart: start,
		EarliestEnd: end, LatestEnd: end,
	}
}

func baseEvent(id, userID string, amount float64, w models.TimeWindow, city string) models.EventBase {
	return models.EventBase{
		EventID:    id,
		UserID:     userID,
		UserName:   "测试用户" + userID,
		Department: "销售部",
		Amount:     amount,
		TimeWindow: w,
		Location:   models.Location{City: city},
	}
}

func taxiEvent(id, userID string, amount float64, w models.TimeWindow, fromCity, toCity string) *models.TaxiEvent {
	return &models.TaxiEvent{
		EventBase:    baseEvent(id, userID, amount, w, fromCity),
		FromLocation: models.Location{City: fromCity},
		ToLocation:   models.Location{City: toCity},
	}
}

func flightEvent(id, userID string, w models.TimeWindow, fromCity, toCity, flightNo string) *models.FlightEvent {
	return &models.FlightEvent{
		EventBase:    baseEvent(id, userID, 1200, w, fromCity),
		FromLocation: models.Location{City: fromCity},
		ToLocation:   models.Location{City: toCity},
		FlightNo:     flightNo,
	}
}

func railwayEvent(id, userID string, w models.TimeWindow, fromCity, toCity, trainNumber string) *models.RailwayEvent {
	return &models.RailwayEvent{
		EventBase:    baseEvent(id, userID, 550, w, fromCity),
		FromLocation: models.Location{City: fromCity},
		ToLocation:   models.Location{City: toCity},
		TrainNumber:  trainNumber,
	}
}

func hotelEvent(id, userID string, w models.TimeWindow, city, hotelName string) *models.HotelEvent {
	return &models.HotelEvent{
		EventBase: baseEvent(id, userID, 680, w, city),
		HotelName: hotelName,
	}
}

func checkInEvent(id, userID string, start time.Time, city string) *models.DailyCheckInEvent {
	return &models.DailyCheckInEvent{
		EventBase: baseEvent(id, userID, 0, exactWindow(start, start.Add(10*time.Minute)), city),
	}
}

func TestAllRulesRegister(t *testing.T) {
	reg := detection.NewRegistry()
	require.NoError(t, Register(reg))

	rules := reg.Rules()
	require.Len(t, rules, 7)

	seen := make(map[string]struct{})
	for _, r := range rules {
		assert.NoError(t, r.Validate())
		_, dup := seen[r.ID]
		assert.False(t, dup, "duplicate rule id %s", r.ID)
		seen[r.ID] = struct{}{}
	}
}

func TestSortedByEarliestStart(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 4, day, 9, 0, 0, 0, time.UTC) }
	events := []models.TrajectoryEvent{
		checkInEvent("E2", "U1", d(2), "北京市"),
		checkInEvent("E1", "U1", d(1), "北京市"),
		checkInEvent("E3", "U1", d(3), "北京市"),
	}

	ordered := sortedByEarliestStart(events)
	assert.Equal(t, "E1", ordered[0].Base().EventID)
	assert.Equal(t, "E2", ordered[1].Base().EventID)
	assert.Equal(t, "E3", ordered[2].Base().EventID)

	// Input slice untouched.
	assert.Equal(t, "E2", events[0].Base().EventID)
}
