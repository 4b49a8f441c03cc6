package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// EventRepository handles database operations for trajectory events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventFilter represents filter parameters for querying events
type EventFilter struct {
	UserID    string           `form:"userId"`
	EventType models.EventType `form:"eventType"`
	StartTime string           `form:"startTime"` // RFC3339, lower bound on earliest_start
	EndTime   string           `form:"endTime"`   // RFC3339, upper bound on earliest_start
}

// Insert stores a batch of events. Each event row keeps the queryable base
// columns plus the full JSON payload used to reconstruct the typed variant.
func (r *EventRepository) Insert(events []models.TrajectoryEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO events (
			id, event_type, user_id, user_name, department, amount, remark,
			earliest_start, latest_start, earliest_end, latest_end,
			city, specific_location, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		payload, err := models.MarshalEvent(event)
		if err != nil {
			return err
		}
		base := event.Base()
		w := base.TimeWindow
		_, err = stmt.Exec(
			base.EventID, string(event.Type()), base.UserID, base.UserName,
			base.Department, base.Amount, base.Remark,
			w.EarliestStart.Format(time.RFC3339), w.LatestStart.Format(time.RFC3339),
			w.EarliestEnd.Format(time.RFC3339), w.LatestEnd.Format(time.RFC3339),
			base.Location.City, base.Location.SpecificLocation, string(payload),
		)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", base.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// List retrieves events matching the filter, ordered by earliest start.
func (r *EventRepository) List(filter EventFilter) ([]models.TrajectoryEvent, error) {
	query := `SELECT event_type, payload_json FROM events`

	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, string(filter.EventType))
	}
	if filter.StartTime != "" {
		conditions = append(conditions, "earliest_start >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime != "" {
		conditions = append(conditions, "earliest_start <= ?")
		args = append(args, filter.EndTime)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY earliest_start, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.TrajectoryEvent
	for rows.Next() {
		var eventType, payload string
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event, err := models.UnmarshalEvent(models.EventType(eventType), []byte(payload))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Count returns the number of stored events.
func (r *EventRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
