package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/models"
)

func checkIn(id, userID string, start time.Time, city string) models.TrajectoryEvent {
	return &models.DailyCheckInEvent{
		EventBase: models.EventBase{
			EventID: id,
			UserID:  userID,
			TimeWindow: models.TimeWindow{
				EarliestStart: start, LatestStart: start,
				EarliestEnd: start.Add(10 * time.Minute), LatestEnd: start.Add(10 * time.Minute),
			},
			Location: models.Location{City: city},
		},
	}
}

func eventIDs(g EventGroup) []string {
	ids := make([]string, 0, len(g.Events))
	for _, e := range g.Events {
		ids = append(ids, e.Base().EventID)
	}
	return ids
}

func totalEvents(groups []EventGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Events)
	}
	return n
}

func TestIndividualGrouping(t *testing.T) {
	events := []models.TrajectoryEvent{
		checkIn("E1", "U1", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), "北京市"),
		checkIn("E2", "U2", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "上海市"),
	}

	groups := IndividualGrouping{}.Partition(events)
	require.Len(t, groups, 2)
	assert.Equal(t, "E1", groups[0].Key)
	assert.Equal(t, []string{"E1"}, eventIDs(groups[0]))
	assert.Equal(t, []string{"E2"}, eventIDs(groups[1]))
	assert.Equal(t, len(events), totalEvents(groups))
}

func TestDailyGroupingBucketsByDate(t *testing.T) {
	events := []models.TrajectoryEvent{
		checkIn("E1", "U1", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), "北京市"),
		checkIn("E2", "U1", time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), "北京市"),
		checkIn("E3", "U2", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), "上海市"),
	}

	groups := DailyGrouping{}.Partition(events)
	require.Len(t, groups, 2)

	// Group keys are sorted dates; in-group order follows input order.
	assert.Equal(t, "2024-03-01", groups[0].Key)
	assert.Equal(t, []string{"E2", "E3"}, eventIDs(groups[0]))
	assert.Equal(t, "2024-03-02", groups[1].Key)
	assert.Equal(t, []string{"E1"}, eventIDs(groups[1]))

	// Totality: no event dropped.
	assert.Equal(t, len(events), totalEvents(groups))
}

func TestDailyGroupingDeterministic(t *testing.T) {
	events := []models.TrajectoryEvent{
		checkIn("E1", "U1", time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), "北京市"),
		checkIn("E2", "U1", time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), "北京市"),
	}
	first := DailyGrouping{}.Partition(events)
	second := DailyGrouping{}.Partition(events)
	assert.Equal(t, first, second)
}

func TestTimeWindowGroupingCoOccurrence(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC) }
	events := []models.TrajectoryEvent{
		checkIn("E1", "U1", d(1), "北京市"),
		checkIn("E2", "U1", d(3), "北京市"),
		checkIn("E3", "U1", d(10), "北京市"),
	}

	groups := TimeWindowGrouping{WindowDays: 3}.Partition(events)
	require.Len(t, groups, 3)

	// Events within 3 days of each other share at least one group; E3 is
	// alone in its own.
	assert.Equal(t, "window:E1", groups[0].Key)
	assert.Equal(t, []string{"E1", "E2"}, eventIDs(groups[0]))
	assert.Equal(t, []string{"E1", "E2"}, eventIDs(groups[1]))
	assert.Equal(t, []string{"E3"}, eventIDs(groups[2]))
}

func TestTimeWindowGroupingForwardOnly(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC) }
	events := []models.TrajectoryEvent{
		checkIn("E1", "U1", d(1), "北京市"),
		checkIn("E2", "U1", d(3), "北京市"),
	}

	groups := TimeWindowGrouping{WindowDays: 3, ForwardOnly: true}.Partition(events)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"E1", "E2"}, eventIDs(groups[0]))
	// Forward-only anchors never look back.
	assert.Equal(t, []string{"E2"}, eventIDs(groups[1]))
}

func TestTimeWindowGroupingEmpty(t *testing.T) {
	assert.Empty(t, TimeWindowGrouping{WindowDays: 1}.Partition(nil))
}
