package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/expense-audit-go/internal/config"
	"github.com/jengzang/expense-audit-go/internal/handler"
	"github.com/jengzang/expense-audit-go/internal/middleware"
)

// Handlers bundles the route handlers wired in main.
type Handlers struct {
	Event      *handler.EventHandler
	Evaluation *handler.EvaluationHandler
	Alert      *handler.AlertHandler
	Rule       *handler.RuleHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Expense Audit API is running",
		})
	})

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(300, time.Minute))
	{
		// 只读接口
		api.GET("/events", h.Event.List)
		api.GET("/evaluations", h.Evaluation.List)
		api.GET("/evaluations/:batchId", h.Evaluation.Get)
		api.GET("/alerts", h.Alert.List)
		api.GET("/alerts/diagnostics/:batchId", h.Alert.Diagnostics)
		api.GET("/rules", h.Rule.List)

		// 写接口需要认证
		authed := api.Group("")
		authed.Use(middleware.AuthRequired(cfg.JWTSecret))
		{
			authed.POST("/events", h.Event.Ingest)
			authed.POST("/evaluations", h.Evaluation.Start)
		}
	}

	return r
}
