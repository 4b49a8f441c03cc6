package detection

import (
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// FindingPrimaryEvent is the key every finding must carry; its value
// references an event inside the group that produced the finding.
const FindingPrimaryEvent = "primary_event_id"

// Finding is the raw detection result for one suspicious pattern, before
// alert formatting. Detect functions put whatever the formatter needs into
// it, plus the mandatory primary event reference.
type Finding map[string]any

// PrimaryEventID returns the finding's primary event reference, or "" when
// the contract is violated.
func (f Finding) PrimaryEventID() string {
	id, _ := f[FindingPrimaryEvent].(string)
	return id
}

// String returns the string stored under key, or "" when absent.
func (f Finding) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Float returns the float64 stored under key, or 0 when absent.
func (f Finding) Float(key string) float64 {
	v, _ := f[key].(float64)
	return v
}

// Int returns the int stored under key, or 0 when absent.
func (f Finding) Int(key string) int {
	v, _ := f[key].(int)
	return v
}

// AlertContent is what a format function produces for one finding. An empty
// title is a contract violation and drops the alert.
type AlertContent struct {
	Title   string
	Details string
}

// DetectFunc inspects one event group and returns zero or more findings.
// A nil slice means no finding; it is not an error.
type DetectFunc func(rule *Rule, group []models.TrajectoryEvent, ctx *EvalContext) []Finding

// FormatAlertFunc renders one finding into alert content.
type FormatAlertFunc func(rule *Rule, group []models.TrajectoryEvent, finding Finding, ctx *EvalContext) AlertContent

// Rule is an immutable bundle binding detection logic and alert formatting
// to an event-type filter and a grouping strategy.
type Rule struct {
	ID          string
	Title       string
	Description string
	Severity    models.Severity
	EventTypes  []models.EventType
	Grouping    GroupingStrategy
	Detect      DetectFunc
	FormatAlert FormatAlertFunc
}

// AcceptsType reports whether the rule declared interest in the variant tag.
func (r *Rule) AcceptsType(t models.EventType) bool {
	for _, accepted := range r.EventTypes {
		if accepted == t {
			return true
		}
	}
	return false
}

// Validate checks the descriptor is complete enough to execute.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %s: invalid severity %q", r.ID, r.Severity)
	}
	if len(r.EventTypes) == 0 {
		return fmt.Errorf("rule %s: no event types declared", r.ID)
	}
	if r.Grouping == nil {
		return fmt.Errorf("rule %s: no grouping strategy", r.ID)
	}
	if r.Detect == nil || r.FormatAlert == nil {
		return fmt.Errorf("rule %s: detect and format functions are required", r.ID)
	}
	return nil
}

// NewIndividualRule builds a rule whose suspicion is self-contained in one
// event; every event becomes its own group.
func NewIndividualRule(id, title, description string, severity models.Severity, eventTypes []models.EventType, detect DetectFunc, format FormatAlertFunc) *Rule {
	return &Rule{
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    severity,
		EventTypes:  eventTypes,
		Grouping:    IndividualGrouping{},
		Detect:      detect,
		FormatAlert: format,
	}
}

// NewDailyRule builds a rule that sees all matching events of one calendar
// day together, across users; per-user scoping is the detect function's job.
func NewDailyRule(id, title, description string, severity models.Severity, eventTypes []models.EventType, detect DetectFunc, format FormatAlertFunc) *Rule {
	return &Rule{
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    severity,
		EventTypes:  eventTypes,
		Grouping:    DailyGrouping{},
		Detect:      detect,
		FormatAlert: format,
	}
}

// NewTimeWindowRule builds a rule that sees, for each event, every event
// starting within windowDays of it. Groups overlap; the engine deduplicates
// findings by (rule id, primary event id).
func NewTimeWindowRule(id, title, description string, severity models.Severity, eventTypes []models.EventType, windowDays int, detect DetectFunc, format FormatAlertFunc) *Rule {
	return &Rule{
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    severity,
		EventTypes:  eventTypes,
		Grouping:    TimeWindowGrouping{WindowDays: windowDays},
		Detect:      detect,
		FormatAlert: format,
	}
}
