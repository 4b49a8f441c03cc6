package service

import (
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/repository"
)

// AlertService handles alert query business logic
type AlertService struct {
	repo *repository.AlertRepository
}

// NewAlertService creates a new alert service
func NewAlertService(repo *repository.AlertRepository) *AlertService {
	return &AlertService{repo: repo}
}

// List retrieves alerts matching the filter.
func (s *AlertService) List(filter repository.AlertFilter) ([]models.Alert, error) {
	return s.repo.List(filter)
}

// ListDiagnostics retrieves the diagnostics for a batch.
func (s *AlertService) ListDiagnostics(batchID string) ([]models.Diagnostic, error) {
	return s.repo.ListDiagnostics(batchID)
}
