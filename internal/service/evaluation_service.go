package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/expense-audit-go/internal/config"
	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/metrics"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/repository"
)

// EvaluationService orchestrates one evaluation batch: load events, build
// the context snapshot, run the engine, persist alerts and diagnostics.
type EvaluationService struct {
	eventRepo *repository.EventRepository
	alertRepo *repository.AlertRepository
	evalRepo  *repository.EvaluationRepository
	ctxRepo   *repository.ContextRepository
	registry  *detection.Registry
	engine    *detection.Engine
	profile   *config.Profile
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(
	eventRepo *repository.EventRepository,
	alertRepo *repository.AlertRepository,
	evalRepo *repository.EvaluationRepository,
	ctxRepo *repository.ContextRepository,
	registry *detection.Registry,
	engine *detection.Engine,
	profile *config.Profile,
) *EvaluationService {
	return &EvaluationService{
		eventRepo: eventRepo,
		alertRepo: alertRepo,
		evalRepo:  evalRepo,
		ctxRepo:   ctxRepo,
		registry:  registry,
		engine:    engine,
		profile:   profile,
	}
}

// StartEvaluation creates a task for the current event batch and runs it
// asynchronously.
func (s *EvaluationService) StartEvaluation(filter repository.EventFilter) (*models.EvaluationTask, error) {
	count, err := s.eventRepo.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no events to evaluate")
	}

	task := &models.EvaluationTask{
		BatchID:     uuid.NewString(),
		TotalEvents: count,
	}
	if err := s.evalRepo.Create(task); err != nil {
		return nil, err
	}

	go s.run(task.BatchID, filter)

	return task, nil
}

// run executes one evaluation batch. Failures here are task failures, never
// crashes: the task record carries the error for operators.
func (s *EvaluationService) run(batchID string, filter repository.EventFilter) {
	log.Printf("[EvaluationService] starting batch %s", batchID)
	start := time.Now()

	if err := s.evalRepo.MarkRunning(batchID); err != nil {
		log.Printf("[EvaluationService] batch %s: %v", batchID, err)
		return
	}

	events, err := s.eventRepo.List(filter)
	if err != nil {
		s.fail(batchID, err)
		return
	}

	ctx, err := s.buildContext()
	if err != nil {
		s.fail(batchID, err)
		return
	}

	alerts, diagnostics := s.engine.Evaluate(s.registry.Rules(), events, ctx)

	if err := s.alertRepo.InsertBatch(batchID, alerts, diagnostics); err != nil {
		s.fail(batchID, err)
		return
	}
	if err := s.evalRepo.MarkCompleted(batchID, len(alerts), len(diagnostics)); err != nil {
		log.Printf("[EvaluationService] batch %s: %v", batchID, err)
		return
	}

	metrics.EvaluationsTotal.WithLabelValues(models.TaskStatusCompleted).Inc()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	for _, a := range alerts {
		metrics.AlertsEmitted.WithLabelValues(a.RuleID).Inc()
	}
	for _, d := range diagnostics {
		metrics.RuleFailures.WithLabelValues(d.RuleID).Inc()
	}

	log.Printf("[EvaluationService] batch %s completed: %d events, %d alerts, %d diagnostics in %v",
		batchID, len(events), len(alerts), len(diagnostics), time.Since(start))
}

func (s *EvaluationService) fail(batchID string, err error) {
	log.Printf("[EvaluationService] batch %s failed: %v", batchID, err)
	metrics.EvaluationsTotal.WithLabelValues(models.TaskStatusFailed).Inc()
	if markErr := s.evalRepo.MarkFailed(batchID, err.Error()); markErr != nil {
		log.Printf("[EvaluationService] batch %s: %v", batchID, markErr)
	}
}

// buildContext assembles the read-only context snapshot for one batch:
// engine defaults, then the YAML profile, then the database lookup tables.
func (s *EvaluationService) buildContext() (*detection.EvalContext, error) {
	ctx := detection.NewEvalContext()

	if s.profile != nil {
		s.profile.Apply(ctx)
	}

	geocodes, err := s.ctxRepo.LoadCityGeocodes()
	if err != nil {
		return nil, err
	}
	for city, coords := range geocodes {
		ctx.Resolver.Add(city, coords)
	}

	workRows, err := s.ctxRepo.LoadUserLocations(repository.LocationKindWork)
	if err != nil {
		return nil, err
	}
	for _, row := range workRows {
		ctx.DefaultWorkLocations[row.UserID] = row.Location
		if row.Coords != nil {
			ctx.Resolver.Add(row.Location.FullAddress(), *row.Coords)
		}
	}

	homeRows, err := s.ctxRepo.LoadUserLocations(repository.LocationKindHome)
	if err != nil {
		return nil, err
	}
	for _, row := range homeRows {
		ctx.DefaultHomeLocations[row.UserID] = row.Location
		if row.Coords != nil {
			ctx.Resolver.Add(row.Location.FullAddress(), *row.Coords)
		}
	}

	return ctx, nil
}

// GetTask retrieves a task with its alerts and diagnostics.
func (s *EvaluationService) GetTask(batchID string) (*models.EvaluationTask, []models.Alert, []models.Diagnostic, error) {
	task, err := s.evalRepo.GetByBatchID(batchID)
	if err != nil {
		return nil, nil, nil, err
	}
	alerts, err := s.alertRepo.List(repository.AlertFilter{BatchID: batchID})
	if err != nil {
		return nil, nil, nil, err
	}
	diagnostics, err := s.alertRepo.ListDiagnostics(batchID)
	if err != nil {
		return nil, nil, nil, err
	}
	return task, alerts, diagnostics, nil
}

// ListTasks retrieves recent evaluation tasks.
func (s *EvaluationService) ListTasks(limit int) ([]models.EvaluationTask, error) {
	return s.evalRepo.List(limit)
}
