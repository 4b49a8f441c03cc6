package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/models"
)

func window(t *testing.T, start, end time.Time) models.TimeWindow {
	t.Helper()
	w, err := models.NewExactTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func day(hour, min int) time.Time {
	return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC) // a Monday
}

func TestOverlapsSymmetric(t *testing.T) {
	w1 := window(t, day(10, 0), day(12, 0))
	w2 := window(t, day(11, 0), day(13, 0))
	w3 := window(t, day(13, 0), day(14, 0))

	assert.True(t, Overlaps(w1, w2))
	assert.True(t, Overlaps(w2, w1))
	assert.False(t, Overlaps(w1, w3))
	assert.False(t, Overlaps(w3, w1))
}

func TestOverlapsUnderUncertainty(t *testing.T) {
	// Possible intervals touch even though the likely ones do not: the
	// optimistic test must report an overlap.
	w1, err := models.NewTimeWindow(day(10, 0), day(10, 30), day(11, 0), day(11, 45))
	require.NoError(t, err)
	w2, err := models.NewTimeWindow(day(11, 30), day(12, 0), day(13, 0), day(13, 0))
	require.NoError(t, err)

	assert.True(t, Overlaps(w1, w2))
}

func TestOverlapDuration(t *testing.T) {
	w1 := window(t, day(10, 0), day(12, 0))
	w2 := window(t, day(11, 0), day(13, 0))

	assert.InDelta(t, 1.0, OverlapDuration(w1, w2, Hours), 1e-9)
	assert.InDelta(t, 60.0, OverlapDuration(w1, w2, Minutes), 1e-9)
	assert.InDelta(t, OverlapDuration(w1, w2, Hours), OverlapDuration(w2, w1, Hours), 1e-9)

	// Disjoint windows clamp to zero, never negative.
	w3 := window(t, day(14, 0), day(15, 0))
	assert.Zero(t, OverlapDuration(w1, w3, Hours))

	// Touching endpoints overlap with zero duration.
	w4 := window(t, day(12, 0), day(13, 0))
	assert.True(t, Overlaps(w1, w4))
	assert.Zero(t, OverlapDuration(w1, w4, Hours))
}

func TestTimeDifferenceSigned(t *testing.T) {
	t1 := day(10, 0)
	t2 := day(13, 30)

	assert.InDelta(t, 3.5, TimeDifference(t1, t2, Hours), 1e-9)
	assert.InDelta(t, -3.5, TimeDifference(t2, t1, Hours), 1e-9)
	assert.InDelta(t, 210, TimeDifference(t1, t2, Minutes), 1e-9)
	assert.InDelta(t, 3.5/24, TimeDifference(t1, t2, Days), 1e-9)
}

func TestIsWithinTimeRange(t *testing.T) {
	assert.True(t, IsWithinTimeRange(day(9, 30), 9.0, 18.0))
	assert.True(t, IsWithinTimeRange(day(9, 0), 9.0, 18.0))
	assert.False(t, IsWithinTimeRange(day(18, 0), 9.0, 18.0), "end bound is exclusive")
	assert.False(t, IsWithinTimeRange(day(8, 59), 9.0, 18.0))

	// Fractional bound: 19.5 means 19:30.
	assert.True(t, IsWithinTimeRange(day(19, 29), 17.0, 19.5))
	assert.False(t, IsWithinTimeRange(day(19, 30), 17.0, 19.5))
}

func TestWorkdayPredicates(t *testing.T) {
	monday := day(10, 0)
	saturday := time.Date(2024, 1, 13, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 14, 10, 0, 0, 0, time.UTC)

	assert.False(t, IsWeekend(monday))
	assert.True(t, IsWeekend(saturday))
	assert.True(t, IsWeekend(sunday))

	assert.True(t, IsBusinessHours(monday, DefaultWorkStartHour, DefaultWorkEndHour))
	assert.False(t, IsAfterHours(monday, DefaultWorkEndHour))
	assert.True(t, IsAfterHours(day(18, 0), DefaultWorkEndHour))
	assert.True(t, IsAfterHours(day(23, 0), DefaultWorkEndHour))
}
