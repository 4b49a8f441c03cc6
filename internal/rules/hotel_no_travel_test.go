package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

func hotelContext() *detection.EvalContext {
	ctx := detection.NewEvalContext()
	ctx.DefaultWorkLocations["U1"] = models.Location{City: "北京市", SpecificLocation: "总部"}
	return ctx
}

func TestHotelNoTravelDetection(t *testing.T) {
	rule := newHotelNoTravelRule()
	checkInTime := time.Date(2024, 4, 15, 14, 0, 0, 0, time.UTC)

	// Two-night stay in Shanghai for a Beijing-based employee.
	hotel := hotelEvent("HT-1", "U1",
		exactWindow(checkInTime, checkInTime.Add(48*time.Hour)),
		"上海市", "某某大酒店")

	t.Run("out-of-town stay with no arriving travel", func(t *testing.T) {
		ctx := hotelContext()
		findings := rule.Detect(rule, []models.TrajectoryEvent{hotel}, ctx)
		require.Len(t, findings, 1)
		assert.Equal(t, "HT-1", findings[0].PrimaryEventID())
		assert.Equal(t, "上海市", findings[0].String("hotel_city"))
		assert.Equal(t, "北京市", findings[0].String("work_city"))
		assert.InDelta(t, 2.0, findings[0].Float("stay_duration"), 1e-9)
	})

	t.Run("arriving flight justifies the stay", func(t *testing.T) {
		ctx := hotelContext()
		arrival := flightEvent("FL-1", "U1",
			exactWindow(checkInTime.Add(-5*time.Hour), checkInTime.Add(-3*time.Hour)),
			"北京市", "上海市", "CA1501")
		assert.Empty(t, rule.Detect(rule, []models.TrajectoryEvent{hotel, arrival}, ctx))
	})

	t.Run("arriving train justifies the stay", func(t *testing.T) {
		ctx := hotelContext()
		arrival := railwayEvent("RW-1", "U1",
			exactWindow(checkInTime.Add(-8*time.Hour), checkInTime.Add(-2*time.Hour)),
			"北京市", "上海市", "G1")
		assert.Empty(t, rule.Detect(rule, []models.TrajectoryEvent{hotel, arrival}, ctx))
	})

	t.Run("travel too long before check-in does not justify", func(t *testing.T) {
		ctx := hotelContext()
		stale := flightEvent("FL-2", "U1",
			exactWindow(checkInTime.Add(-50*time.Hour), checkInTime.Add(-48*time.Hour)),
			"北京市", "上海市", "CA1501")
		findings := rule.Detect(rule, []models.TrajectoryEvent{hotel, stale}, ctx)
		require.Len(t, findings, 1)
	})

	t.Run("travel into another city does not justify", func(t *testing.T) {
		ctx := hotelContext()
		wrongCity := flightEvent("FL-3", "U1",
			exactWindow(checkInTime.Add(-5*time.Hour), checkInTime.Add(-3*time.Hour)),
			"北京市", "杭州市", "CA1709")
		findings := rule.Detect(rule, []models.TrajectoryEvent{hotel, wrongCity}, ctx)
		require.Len(t, findings, 1)
	})

	t.Run("someone else's travel does not justify", func(t *testing.T) {
		ctx := hotelContext()
		otherUser := flightEvent("FL-4", "U2",
			exactWindow(checkInTime.Add(-5*time.Hour), checkInTime.Add(-3*time.Hour)),
			"北京市", "上海市", "CA1501")
		findings := rule.Detect(rule, []models.TrajectoryEvent{hotel, otherUser}, ctx)
		require.Len(t, findings, 1)
	})

	t.Run("stay in the work city is fine", func(t *testing.T) {
		ctx := hotelContext()
		local := hotelEvent("HT-2", "U1",
			exactWindow(checkInTime, checkInTime.Add(48*time.Hour)),
			"北京市", "会议酒店")
		assert.Empty(t, rule.Detect(rule, []models.TrajectoryEvent{local}, ctx))
	})

	t.Run("short stay is below the floor", func(t *testing.T) {
		ctx := hotelContext()
		dayUse := hotelEvent("HT-3", "U1",
			exactWindow(checkInTime, checkInTime.Add(6*time.Hour)),
			"上海市", "钟点房")
		assert.Empty(t, rule.Detect(rule, []models.TrajectoryEvent{dayUse}, ctx))
	})

	t.Run("unknown work city yields no conclusion", func(t *testing.T) {
		ctx := detection.NewEvalContext()
		assert.Empty(t, rule.Detect(rule, []models.TrajectoryEvent{hotel}, ctx))
	})
}

func TestHotelNoTravelAlertFormat(t *testing.T) {
	rule := newHotelNoTravelRule()
	ctx := hotelContext()
	checkInTime := time.Date(2024, 4, 15, 14, 0, 0, 0, time.UTC)
	group := []models.TrajectoryEvent{
		hotelEvent("HT-1", "U1", exactWindow(checkInTime, checkInTime.Add(48*time.Hour)), "上海市", "某某大酒店"),
	}

	findings := rule.Detect(rule, group, ctx)
	require.Len(t, findings, 1)

	content := rule.FormatAlert(rule, group, findings[0], ctx)
	assert.Equal(t, "Hotel Stay Without Travel Record: 上海市", content.Title)
	assert.Contains(t, content.Details, "某某大酒店")
	assert.Contains(t, content.Details, "北京市")
}
