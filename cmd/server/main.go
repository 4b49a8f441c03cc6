package main

import (
	"log"

	"github.com/jengzang/expense-audit-go/internal/api"
	"github.com/jengzang/expense-audit-go/internal/config"
	"github.com/jengzang/expense-audit-go/internal/database"
	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/handler"
	"github.com/jengzang/expense-audit-go/internal/repository"
	"github.com/jengzang/expense-audit-go/internal/rules"
	"github.com/jengzang/expense-audit-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.NewMigrationManager(db).Run(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// 可选的上下文配置文件
	var profile *config.Profile
	if cfg.ContextProfile != "" {
		p, err := config.LoadProfile(cfg.ContextProfile)
		if err != nil {
			log.Fatal("Failed to load context profile:", err)
		}
		profile = p
	}

	// 注册内置规则
	registry := detection.NewRegistry()
	if err := rules.Register(registry); err != nil {
		log.Fatal("Failed to register rules:", err)
	}
	log.Printf("[Main] registered %d detection rules", len(registry.Rules()))

	engine := detection.NewEngine(cfg.EvalWorkers, cfg.RuleTimeout)

	// 组装仓库、服务与处理器
	eventRepo := repository.NewEventRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)
	ctxRepo := repository.NewContextRepository(db)

	eventService := service.NewEventService(eventRepo)
	alertService := service.NewAlertService(alertRepo)
	evalService := service.NewEvaluationService(eventRepo, alertRepo, evalRepo, ctxRepo, registry, engine, profile)

	router := api.SetupRouter(cfg, api.Handlers{
		Event:      handler.NewEventHandler(eventService),
		Evaluation: handler.NewEvaluationHandler(evalService),
		Alert:      handler.NewAlertHandler(alertService),
		Rule:       handler.NewRuleHandler(registry),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
