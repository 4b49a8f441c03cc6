package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/database"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/spatial"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db).Run())
	return db
}

func storedTaxi(id, userID string, amount float64, start time.Time) *models.TaxiEvent {
	end := start.Add(30 * time.Minute)
	return &models.TaxiEvent{
		EventBase: models.EventBase{
			EventID:  id,
			UserID:   userID,
			UserName: "王五",
			Amount:   amount,
			TimeWindow: models.TimeWindow{
				EarliestStart: start, LatestStart: start,
				EarliestEnd: end, LatestEnd: end,
			},
			Location: models.Location{City: "北京市"},
		},
		FromLocation: models.Location{City: "北京市", SpecificLocation: "起点"},
		ToLocation:   models.Location{City: "北京市", SpecificLocation: "终点"},
	}
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	events := []models.TrajectoryEvent{
		storedTaxi("TX-1", "U1", 42, start),
		storedTaxi("TX-2", "U2", 88, start.Add(2*time.Hour)),
		&models.HotelEvent{
			EventBase: models.EventBase{
				EventID: "HT-1", UserID: "U1", Amount: 500,
				TimeWindow: models.TimeWindow{
					EarliestStart: start.Add(5 * time.Hour), LatestStart: start.Add(5 * time.Hour),
					EarliestEnd: start.Add(24 * time.Hour), LatestEnd: start.Add(24 * time.Hour),
				},
				Location: models.Location{City: "上海市"},
			},
			HotelName: "测试酒店",
		},
	}
	require.NoError(t, repo.Insert(events))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	t.Run("list all ordered by start", func(t *testing.T) {
		got, err := repo.List(EventFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "TX-1", got[0].Base().EventID)
		assert.Equal(t, "TX-2", got[1].Base().EventID)
		assert.Equal(t, "HT-1", got[2].Base().EventID)

		// The typed variant survives the round trip.
		taxi, ok := got[0].(*models.TaxiEvent)
		require.True(t, ok)
		assert.Equal(t, "起点", taxi.FromLocation.SpecificLocation)
	})

	t.Run("filter by user", func(t *testing.T) {
		got, err := repo.List(EventFilter{UserID: "U1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filter by type", func(t *testing.T) {
		got, err := repo.List(EventFilter{EventType: models.EventTypeHotel})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, models.EventTypeHotel, got[0].Type())
	})

	t.Run("filter by time range", func(t *testing.T) {
		got, err := repo.List(EventFilter{
			StartTime: start.Add(time.Hour).Format(time.RFC3339),
			EndTime:   start.Add(3 * time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "TX-2", got[0].Base().EventID)
	})

	t.Run("reinsert replaces by id", func(t *testing.T) {
		updated := storedTaxi("TX-1", "U1", 99, start)
		require.NoError(t, repo.Insert([]models.TrajectoryEvent{updated}))

		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		got, err := repo.List(EventFilter{UserID: "U1", EventType: models.EventTypeTaxi})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 99.0, got[0].Base().Amount)
	})
}

func TestAlertRepository(t *testing.T) {
	repo := NewAlertRepository(newTestDB(t))

	alerts := []models.Alert{
		{
			RuleID: "R1", Title: "First", Severity: models.SeverityHigh,
			Details: "details", PrimaryEventID: "E1",
			EventIDs: []string{"E1", "E2"}, GroupKey: "2024-05-06",
		},
		{
			RuleID: "R2", Title: "Second", Severity: models.SeverityLow,
			PrimaryEventID: "E3", EventIDs: []string{"E3"},
		},
	}
	diags := []models.Diagnostic{
		{RuleID: "R3", GroupKey: "g1", Error: "detect panicked: boom"},
	}
	require.NoError(t, repo.InsertBatch("batch-1", alerts, diags))

	t.Run("list by batch", func(t *testing.T) {
		got, err := repo.List(AlertFilter{BatchID: "batch-1"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "R1", got[0].RuleID)
		assert.Equal(t, []string{"E1", "E2"}, got[0].EventIDs)
		assert.Equal(t, models.SeverityHigh, got[0].Severity)
	})

	t.Run("filter by severity and event", func(t *testing.T) {
		got, err := repo.List(AlertFilter{Severity: models.SeverityLow})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "R2", got[0].RuleID)

		got, err = repo.List(AlertFilter{EventID: "E1"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "E1", got[0].PrimaryEventID)
	})

	t.Run("diagnostics side channel", func(t *testing.T) {
		got, err := repo.ListDiagnostics("batch-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "R3", got[0].RuleID)
		assert.Contains(t, got[0].Error, "panicked")

		empty, err := repo.ListDiagnostics("no-such-batch")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestEvaluationRepositoryLifecycle(t *testing.T) {
	repo := NewEvaluationRepository(newTestDB(t))

	task := &models.EvaluationTask{BatchID: "batch-1", TotalEvents: 12}
	require.NoError(t, repo.Create(task))
	assert.Positive(t, task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	require.NoError(t, repo.MarkRunning("batch-1"))
	got, err := repo.GetByBatchID("batch-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRunning, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, repo.MarkCompleted("batch-1", 5, 2))
	got, err = repo.GetByBatchID("batch-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, 5, got.AlertCount)
	assert.Equal(t, 2, got.DiagnosticCount)
	assert.NotNil(t, got.CompletedAt)

	failed := &models.EvaluationTask{BatchID: "batch-2"}
	require.NoError(t, repo.Create(failed))
	require.NoError(t, repo.MarkFailed("batch-2", "storage unavailable"))
	got, err = repo.GetByBatchID("batch-2")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Equal(t, "storage unavailable", got.ErrorMessage)

	tasks, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// Newest first.
	assert.Equal(t, "batch-2", tasks[0].BatchID)
}

func TestContextRepository(t *testing.T) {
	repo := NewContextRepository(newTestDB(t))

	require.NoError(t, repo.UpsertCityGeocode("北京市", spatial.Coordinates{Lat: 39.9, Lng: 116.4}))
	require.NoError(t, repo.UpsertCityGeocode("北京市", spatial.Coordinates{Lat: 39.9042, Lng: 116.4074}))

	geocodes, err := repo.LoadCityGeocodes()
	require.NoError(t, err)
	require.Len(t, geocodes, 1)
	assert.Equal(t, 39.9042, geocodes["北京市"].Lat)

	work := models.Location{City: "北京市", SpecificLocation: "国贸写字楼"}
	require.NoError(t, repo.UpsertUserLocation("U1", LocationKindWork, work, &spatial.Coordinates{Lat: 39.908, Lng: 116.46}))
	require.NoError(t, repo.UpsertUserLocation("U1", LocationKindHome, models.Location{City: "北京市", SpecificLocation: "望京"}, nil))

	workRows, err := repo.LoadUserLocations(LocationKindWork)
	require.NoError(t, err)
	require.Len(t, workRows, 1)
	assert.Equal(t, "U1", workRows[0].UserID)
	assert.Equal(t, work, workRows[0].Location)
	require.NotNil(t, workRows[0].Coords)
	assert.Equal(t, 39.908, workRows[0].Coords.Lat)

	homeRows, err := repo.LoadUserLocations(LocationKindHome)
	require.NoError(t, err)
	require.Len(t, homeRows, 1)
	assert.Nil(t, homeRows[0].Coords)

	// Upsert replaces the existing row for the same user and kind.
	moved := models.Location{City: "上海市", SpecificLocation: "浦东"}
	require.NoError(t, repo.UpsertUserLocation("U1", LocationKindWork, moved, nil))
	workRows, err = repo.LoadUserLocations(LocationKindWork)
	require.NoError(t, err)
	require.Len(t, workRows, 1)
	assert.Equal(t, moved, workRows[0].Location)
	assert.Nil(t, workRows[0].Coords)
}
