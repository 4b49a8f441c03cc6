package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/repository"
)

// EventService handles event ingestion business logic
type EventService struct {
	repo *repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

// RawEvent is one incoming event before variant decoding: the declared type
// plus the full event body.
type RawEvent struct {
	Type    models.EventType `json:"type"`
	Payload json.RawMessage  `json:"event"`
}

// Ingest decodes, validates and stores a batch of events. Validation is
// all-or-nothing: one bad event rejects the batch so callers can fix and
// resubmit, which keeps the stored stream free of invalid primitives.
func (s *EventService) Ingest(raw []RawEvent) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("no events supplied")
	}

	events := make([]models.TrajectoryEvent, 0, len(raw))
	for i, r := range raw {
		event, err := models.UnmarshalEvent(r.Type, r.Payload)
		if err != nil {
			return 0, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, event)
	}

	if err := s.repo.Insert(events); err != nil {
		return 0, err
	}
	log.Printf("[EventService] ingested %d events", len(events))
	return len(events), nil
}

// List retrieves stored events matching the filter.
func (s *EventService) List(filter repository.EventFilter) ([]models.TrajectoryEvent, error) {
	return s.repo.List(filter)
}
