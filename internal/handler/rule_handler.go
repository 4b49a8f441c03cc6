package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/pkg/response"
)

// RuleHandler exposes the registered rule descriptors
type RuleHandler struct {
	registry *detection.Registry
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(registry *detection.Registry) *RuleHandler {
	return &RuleHandler{registry: registry}
}

// ruleInfo is the read-only view of a rule descriptor.
type ruleInfo struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Severity    models.Severity    `json:"severity"`
	EventTypes  []models.EventType `json:"eventTypes"`
	Grouping    string             `json:"grouping"`
}

// List handles GET /api/v1/rules
func (h *RuleHandler) List(c *gin.Context) {
	rules := h.registry.Rules()
	infos := make([]ruleInfo, 0, len(rules))
	for _, r := range rules {
		infos = append(infos, ruleInfo{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Severity:    r.Severity,
			EventTypes:  r.EventTypes,
			Grouping:    r.Grouping.Name(),
		})
	}
	response.Success(c, gin.H{"rules": infos, "total": len(infos)})
}
