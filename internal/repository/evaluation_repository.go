package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// EvaluationRepository handles database operations for evaluation tasks
type EvaluationRepository struct {
	db *sql.DB
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a pending task and fills in its id.
func (r *EvaluationRepository) Create(task *models.EvaluationTask) error {
	result, err := r.db.Exec(`
		INSERT INTO evaluation_tasks (batch_id, status, total_events)
		VALUES (?, ?, ?)
	`, task.BatchID, models.TaskStatusPending, task.TotalEvents)
	if err != nil {
		return fmt.Errorf("failed to create evaluation task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	task.ID = id
	task.Status = models.TaskStatusPending
	return nil
}

// MarkRunning marks a task as running
func (r *EvaluationRepository) MarkRunning(batchID string) error {
	_, err := r.db.Exec(`
		UPDATE evaluation_tasks
		SET status = ?, started_at = CURRENT_TIMESTAMP
		WHERE batch_id = ?
	`, models.TaskStatusRunning, batchID)
	if err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}
	return nil
}

// MarkCompleted marks a task as completed with its result counts
func (r *EvaluationRepository) MarkCompleted(batchID string, alertCount, diagnosticCount int) error {
	_, err := r.db.Exec(`
		UPDATE evaluation_tasks
		SET status = ?, alert_count = ?, diagnostic_count = ?, completed_at = CURRENT_TIMESTAMP
		WHERE batch_id = ?
	`, models.TaskStatusCompleted, alertCount, diagnosticCount, batchID)
	if err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}
	return nil
}

// MarkFailed marks a task as failed with an error message
func (r *EvaluationRepository) MarkFailed(batchID, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE evaluation_tasks
		SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE batch_id = ?
	`, models.TaskStatusFailed, errorMsg, batchID)
	if err != nil {
		return fmt.Errorf("failed to mark task as failed: %w", err)
	}
	return nil
}

// GetByBatchID retrieves a task by its batch id.
func (r *EvaluationRepository) GetByBatchID(batchID string) (*models.EvaluationTask, error) {
	var task models.EvaluationTask
	var startedAt, completedAt sql.NullString

	err := r.db.QueryRow(`
		SELECT id, batch_id, status, total_events, alert_count, diagnostic_count,
		       error_message, created_at, started_at, completed_at
		FROM evaluation_tasks
		WHERE batch_id = ?
	`, batchID).Scan(
		&task.ID, &task.BatchID, &task.Status, &task.TotalEvents,
		&task.AlertCount, &task.DiagnosticCount, &task.ErrorMessage,
		&task.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation task %s: %w", batchID, err)
	}

	if startedAt.Valid {
		task.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.String
	}
	return &task, nil
}

// List retrieves recent tasks, newest first.
func (r *EvaluationRepository) List(limit int) ([]models.EvaluationTask, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, batch_id, status, total_events, alert_count, diagnostic_count,
		       error_message, created_at, started_at, completed_at
		FROM evaluation_tasks
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.EvaluationTask
	for rows.Next() {
		var task models.EvaluationTask
		var startedAt, completedAt sql.NullString
		if err := rows.Scan(
			&task.ID, &task.BatchID, &task.Status, &task.TotalEvents,
			&task.AlertCount, &task.DiagnosticCount, &task.ErrorMessage,
			&task.CreatedAt, &startedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation task: %w", err)
		}
		if startedAt.Valid {
			task.StartedAt = &startedAt.String
		}
		if completedAt.Valid {
			task.CompletedAt = &completedAt.String
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
