package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/expense-audit-go/internal/repository"
	"github.com/jengzang/expense-audit-go/internal/service"
	"github.com/jengzang/expense-audit-go/pkg/response"
)

// EventHandler handles event ingestion endpoints
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(service *service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// Ingest handles POST /api/v1/events
func (h *EventHandler) Ingest(c *gin.Context) {
	var raw []service.RawEvent
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	count, err := h.service.Ingest(raw)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"ingested": count})
}

// List handles GET /api/v1/events
func (h *EventHandler) List(c *gin.Context) {
	var filter repository.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	events, err := h.service.List(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"events": events, "total": len(events)})
}
