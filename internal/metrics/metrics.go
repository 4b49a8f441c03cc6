// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts finished evaluation batches by outcome.
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_audit_evaluations_total",
		Help: "Number of evaluation batches run, by outcome",
	}, []string{"status"})

	// AlertsEmitted counts alerts per rule.
	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_audit_alerts_emitted_total",
		Help: "Number of alerts emitted, by rule",
	}, []string{"rule_id"})

	// RuleFailures counts diagnostics per rule.
	RuleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_audit_rule_failures_total",
		Help: "Number of rule diagnostics recorded, by rule",
	}, []string{"rule_id"})

	// EvaluationDuration observes batch evaluation wall time.
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "expense_audit_evaluation_duration_seconds",
		Help:    "Wall time of one evaluation batch",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequests counts API requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_audit_http_requests_total",
		Help: "Number of HTTP requests, by method, route and status",
	}, []string{"method", "path", "status"})
)
