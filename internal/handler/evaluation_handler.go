package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/expense-audit-go/internal/repository"
	"github.com/jengzang/expense-audit-go/internal/service"
	"github.com/jengzang/expense-audit-go/pkg/response"
)

// EvaluationHandler handles evaluation task endpoints
type EvaluationHandler struct {
	service *service.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(service *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Start handles POST /api/v1/evaluations
func (h *EvaluationHandler) Start(c *gin.Context) {
	var filter repository.EventFilter
	if err := c.ShouldBindJSON(&filter); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	task, err := h.service.StartEvaluation(filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Accepted(c, task)
}

// Get handles GET /api/v1/evaluations/:batchId
func (h *EvaluationHandler) Get(c *gin.Context) {
	batchID := c.Param("batchId")

	task, alerts, diagnostics, err := h.service.GetTask(batchID)
	if err != nil {
		response.NotFound(c, "evaluation not found: "+batchID)
		return
	}

	response.Success(c, gin.H{
		"task":        task,
		"alerts":      alerts,
		"diagnostics": diagnostics,
	})
}

// List handles GET /api/v1/evaluations
func (h *EvaluationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	tasks, err := h.service.ListTasks(limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"tasks": tasks, "total": len(tasks)})
}
