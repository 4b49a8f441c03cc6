package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/expense-audit-go/internal/repository"
	"github.com/jengzang/expense-audit-go/internal/service"
	"github.com/jengzang/expense-audit-go/pkg/response"
)

// AlertHandler handles alert query endpoints
type AlertHandler struct {
	service *service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *service.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// List handles GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	var filter repository.AlertFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	alerts, err := h.service.List(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"alerts": alerts, "total": len(alerts)})
}

// Diagnostics handles GET /api/v1/alerts/diagnostics/:batchId
func (h *AlertHandler) Diagnostics(c *gin.Context) {
	batchID := c.Param("batchId")

	diagnostics, err := h.service.ListDiagnostics(batchID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"diagnostics": diagnostics, "total": len(diagnostics)})
}
