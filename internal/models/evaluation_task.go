package models

// Task status constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// EvaluationTask tracks one asynchronous evaluation of the event batch
// against the registered rules.
type EvaluationTask struct {
	ID              int64   `json:"id" db:"id"`
	BatchID         string  `json:"batchId" db:"batch_id"`
	Status          string  `json:"status" db:"status"`
	TotalEvents     int     `json:"totalEvents" db:"total_events"`
	AlertCount      int     `json:"alertCount" db:"alert_count"`
	DiagnosticCount int     `json:"diagnosticCount" db:"diagnostic_count"`
	ErrorMessage    string  `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt       string  `json:"createdAt" db:"created_at"`
	StartedAt       *string `json:"startedAt,omitempty" db:"started_at"`
	CompletedAt     *string `json:"completedAt,omitempty" db:"completed_at"`
}
