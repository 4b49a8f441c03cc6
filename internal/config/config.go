package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	ContextProfile string        // optional YAML profile with thresholds and default locations
	EvalWorkers    int           // worker pool size for group evaluation
	RuleTimeout    time.Duration // per-rule time budget
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/audit/audit.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	workers := 4
	if v := os.Getenv("EVAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	ruleTimeout := 30 * time.Second
	if v := os.Getenv("RULE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			ruleTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return &Config{
		Port:           port,
		DBPath:         dbPath,
		JWTSecret:      jwtSecret,
		ContextProfile: os.Getenv("CONTEXT_PROFILE"),
		EvalWorkers:    workers,
		RuleTimeout:    ruleTimeout,
	}
}
