package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// AlertRepository handles database operations for alerts and diagnostics
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// AlertFilter represents filter parameters for querying alerts
type AlertFilter struct {
	BatchID  string          `form:"batchId"`
	RuleID   string          `form:"ruleId"`
	Severity models.Severity `form:"severity"`
	EventID  string          `form:"eventId"` // matches the primary event
}

// InsertBatch stores the alerts and diagnostics produced by one evaluation.
func (r *AlertRepository) InsertBatch(batchID string, alerts []models.Alert, diagnostics []models.Diagnostic) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	alertStmt, err := tx.Prepare(`
		INSERT INTO alerts (batch_id, rule_id, title, severity, details, primary_event_id, event_ids_json, group_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare alert insert: %w", err)
	}
	defer alertStmt.Close()

	for _, a := range alerts {
		idsJSON, err := json.Marshal(a.EventIDs)
		if err != nil {
			return fmt.Errorf("failed to encode event ids: %w", err)
		}
		if _, err := alertStmt.Exec(
			batchID, a.RuleID, a.Title, string(a.Severity), a.Details,
			a.PrimaryEventID, string(idsJSON), a.GroupKey,
		); err != nil {
			return fmt.Errorf("failed to insert alert for rule %s: %w", a.RuleID, err)
		}
	}

	diagStmt, err := tx.Prepare(`
		INSERT INTO diagnostics (batch_id, rule_id, group_key, error)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostic insert: %w", err)
	}
	defer diagStmt.Close()

	for _, d := range diagnostics {
		if _, err := diagStmt.Exec(batchID, d.RuleID, d.GroupKey, d.Error); err != nil {
			return fmt.Errorf("failed to insert diagnostic for rule %s: %w", d.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alerts: %w", err)
	}
	return nil
}

// List retrieves alerts matching the filter, newest batches first and stable
// within a batch.
func (r *AlertRepository) List(filter AlertFilter) ([]models.Alert, error) {
	query := `
		SELECT id, batch_id, rule_id, title, severity, details,
		       primary_event_id, event_ids_json, group_key, created_at
		FROM alerts
	`

	var conditions []string
	var args []interface{}

	if filter.BatchID != "" {
		conditions = append(conditions, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if filter.RuleID != "" {
		conditions = append(conditions, "rule_id = ?")
		args = append(args, filter.RuleID)
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.EventID != "" {
		conditions = append(conditions, "primary_event_id = ?")
		args = append(args, filter.EventID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var severity, idsJSON string
		if err := rows.Scan(
			&a.ID, &a.BatchID, &a.RuleID, &a.Title, &severity, &a.Details,
			&a.PrimaryEventID, &idsJSON, &a.GroupKey, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = models.Severity(severity)
		if err := json.Unmarshal([]byte(idsJSON), &a.EventIDs); err != nil {
			return nil, fmt.Errorf("failed to decode event ids for alert %d: %w", a.ID, err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ListDiagnostics retrieves the diagnostics side channel for a batch.
func (r *AlertRepository) ListDiagnostics(batchID string) ([]models.Diagnostic, error) {
	rows, err := r.db.Query(`
		SELECT id, batch_id, rule_id, group_key, error, created_at
		FROM diagnostics
		WHERE batch_id = ?
		ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var diagnostics []models.Diagnostic
	for rows.Next() {
		var d models.Diagnostic
		if err := rows.Scan(&d.ID, &d.BatchID, &d.RuleID, &d.GroupKey, &d.Error, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diagnostics = append(diagnostics, d)
	}
	return diagnostics, rows.Err()
}
