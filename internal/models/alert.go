package models

import "time"

// Severity grades how suspicious a detected pattern is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the severity is one of the known grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Alert is the user-facing record of one detected suspicious pattern. It is
// immutable once emitted and references the triggering events by id only.
type Alert struct {
	ID             int64     `json:"id,omitempty" db:"id"`
	BatchID        string    `json:"batchId,omitempty" db:"batch_id"`
	RuleID         string    `json:"ruleId" db:"rule_id"`
	Title          string    `json:"title" db:"title"`
	Severity       Severity  `json:"severity" db:"severity"`
	Details        string    `json:"details" db:"details"`
	PrimaryEventID string    `json:"primaryEventId" db:"primary_event_id"`
	EventIDs       []string  `json:"eventIds"`
	GroupKey       string    `json:"groupKey" db:"group_key"`
	CreatedAt      time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// Diagnostic records a rule failure (panic, contract violation, or time
// budget overrun) isolated at the rule-and-group boundary. Diagnostics are
// the operator side channel; they never abort a batch.
type Diagnostic struct {
	ID        int64     `json:"id,omitempty" db:"id"`
	BatchID   string    `json:"batchId,omitempty" db:"batch_id"`
	RuleID    string    `json:"ruleId" db:"rule_id"`
	GroupKey  string    `json:"groupKey" db:"group_key"`
	Error     string    `json:"error" db:"error"`
	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}
