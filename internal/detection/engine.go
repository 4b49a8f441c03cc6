package detection

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// Default engine tuning.
const (
	DefaultWorkers    = 4
	DefaultRuleBudget = 30 * time.Second
)

// Engine executes rule descriptors over an in-memory event batch. Rule
// evaluation is a pure function of (rule, group, context), so groups run on
// a bounded worker pool with per-group result slots; the only merge happens
// after all groups of a rule finish, in group order.
type Engine struct {
	workers    int
	ruleBudget time.Duration
}

// NewEngine creates an engine with the given worker count and per-rule time
// budget. Non-positive values fall back to the defaults.
func NewEngine(workers int, ruleBudget time.Duration) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if ruleBudget <= 0 {
		ruleBudget = DefaultRuleBudget
	}
	return &Engine{workers: workers, ruleBudget: ruleBudget}
}

// Evaluate runs every rule over the batch and returns the alerts produced
// plus the diagnostics side channel. Isolated rule failures never fail the
// batch: a panicking or contract-violating rule contributes a diagnostic and
// evaluation continues. Alert order is rule-declaration order, then
// discovery order within each rule.
func (e *Engine) Evaluate(rules []*Rule, events []models.TrajectoryEvent, ctx *EvalContext) ([]models.Alert, []models.Diagnostic) {
	if ctx == nil {
		ctx = NewEvalContext()
	}

	var alerts []models.Alert
	var diagnostics []models.Diagnostic

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			diagnostics = append(diagnostics, models.Diagnostic{
				RuleID: rule.ID,
				Error:  fmt.Sprintf("invalid rule descriptor: %v", err),
			})
			continue
		}

		ruleAlerts, ruleDiags := e.evaluateRule(rule, events, ctx)
		alerts = append(alerts, ruleAlerts...)
		diagnostics = append(diagnostics, ruleDiags...)
	}

	log.Printf("[Engine] evaluated %d rules over %d events: %d alerts, %d diagnostics",
		len(rules), len(events), len(alerts), len(diagnostics))
	return alerts, diagnostics
}

// groupResult holds one group's contribution; results are written into
// per-group slots so no worker shares mutable state with another.
type groupResult struct {
	alerts  []models.Alert
	diags   []models.Diagnostic
	skipped bool
}

func (e *Engine) evaluateRule(rule *Rule, events []models.TrajectoryEvent, ctx *EvalContext) ([]models.Alert, []models.Diagnostic) {
	filtered := make([]models.TrajectoryEvent, 0, len(events))
	for _, ev := range events {
		if rule.AcceptsType(ev.Type()) {
			filtered = append(filtered, ev)
		}
	}
	// An empty filter result is not an error, the rule just has nothing to say.
	if len(filtered) == 0 {
		return nil, nil
	}

	groups := rule.Grouping.Partition(filtered)
	if len(groups) == 0 {
		return nil, nil
	}

	// The budget is checked before each group starts; a detect call that is
	// already running is not preempted, but no further groups launch once
	// the budget is spent.
	deadline := time.Now().Add(e.ruleBudget)

	results := make([]groupResult, len(groups))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range groups {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if time.Now().After(deadline) {
				results[i].skipped = true
				return
			}
			results[i] = e.runGroup(rule, groups[i], ctx)
		}(i)
	}
	wg.Wait()

	var alerts []models.Alert
	var diags []models.Diagnostic
	skippedGroups := 0
	seen := make(map[string]struct{})
	for _, res := range results {
		if res.skipped {
			skippedGroups++
			continue
		}
		for _, a := range res.alerts {
			// Overlapping sliding-window groups can rediscover the same
			// finding; the first alert per (rule, primary event) survives.
			key := a.RuleID + "\x00" + a.PrimaryEventID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			alerts = append(alerts, a)
		}
		diags = append(diags, res.diags...)
	}
	if skippedGroups > 0 {
		diags = append(diags, models.Diagnostic{
			RuleID: rule.ID,
			Error:  fmt.Sprintf("rule time budget %s exceeded, %d of %d groups skipped", e.ruleBudget, skippedGroups, len(groups)),
		})
		log.Printf("[Engine] rule %s exceeded time budget, skipped %d groups", rule.ID, skippedGroups)
	}
	return alerts, diags
}

// runGroup invokes the detect and format functions for one group, isolating
// panics and contract violations to that group.
func (e *Engine) runGroup(rule *Rule, group EventGroup, ctx *EvalContext) groupResult {
	var res groupResult

	findings, err := e.detectGroup(rule, group, ctx)
	if err != nil {
		res.diags = append(res.diags, models.Diagnostic{
			RuleID:   rule.ID,
			GroupKey: group.Key,
			Error:    err.Error(),
		})
		return res
	}
	if len(findings) == 0 {
		return res
	}

	inGroup := make(map[string]struct{}, len(group.Events))
	eventIDs := make([]string, 0, len(group.Events))
	for _, ev := range group.Events {
		id := ev.Base().EventID
		inGroup[id] = struct{}{}
		eventIDs = append(eventIDs, id)
	}

	for _, finding := range findings {
		primaryID := finding.PrimaryEventID()
		if primaryID == "" {
			res.diags = append(res.diags, models.Diagnostic{
				RuleID:   rule.ID,
				GroupKey: group.Key,
				Error:    "finding is missing primary_event_id",
			})
			continue
		}
		if _, ok := inGroup[primaryID]; !ok {
			res.diags = append(res.diags, models.Diagnostic{
				RuleID:   rule.ID,
				GroupKey: group.Key,
				Error:    fmt.Sprintf("finding references event %s outside its group", primaryID),
			})
			continue
		}

		content, err := e.formatFinding(rule, group, finding, ctx)
		if err != nil {
			res.diags = append(res.diags, models.Diagnostic{
				RuleID:   rule.ID,
				GroupKey: group.Key,
				Error:    err.Error(),
			})
			continue
		}
		if content.Title == "" {
			res.diags = append(res.diags, models.Diagnostic{
				RuleID:   rule.ID,
				GroupKey: group.Key,
				Error:    "format returned an empty alert title",
			})
			continue
		}

		res.alerts = append(res.alerts, models.Alert{
			RuleID:         rule.ID,
			Title:          content.Title,
			Severity:       rule.Severity,
			Details:        content.Details,
			PrimaryEventID: primaryID,
			EventIDs:       eventIDs,
			GroupKey:       group.Key,
		})
	}
	return res
}

func (e *Engine) detectGroup(rule *Rule, group EventGroup, ctx *EvalContext) (findings []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detect panicked: %v", r)
		}
	}()
	return rule.Detect(rule, group.Events, ctx), nil
}

func (e *Engine) formatFinding(rule *Rule, group EventGroup, finding Finding, ctx *EvalContext) (content AlertContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("format panicked: %v", r)
		}
	}()
	return rule.FormatAlert(rule, group.Events, finding, ctx), nil
}
