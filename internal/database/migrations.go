package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in version order at startup. The schema ships with
// the binary instead of loose .sql files so a fresh deployment needs no
// extra assets.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				event_type TEXT NOT NULL,
				user_id TEXT NOT NULL,
				user_name TEXT NOT NULL DEFAULT '',
				department TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL DEFAULT 0,
				remark TEXT NOT NULL DEFAULT '',
				earliest_start TEXT NOT NULL,
				latest_start TEXT NOT NULL,
				earliest_end TEXT NOT NULL,
				latest_end TEXT NOT NULL,
				city TEXT NOT NULL,
				specific_location TEXT NOT NULL DEFAULT '',
				payload_json TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id);
			CREATE INDEX IF NOT EXISTS idx_events_start ON events(earliest_start);
		`,
	},
	{
		Version: 2,
		Name:    "create_evaluation_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS evaluation_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				batch_id TEXT NOT NULL UNIQUE,
				status TEXT NOT NULL DEFAULT 'pending',
				total_events INTEGER NOT NULL DEFAULT 0,
				alert_count INTEGER NOT NULL DEFAULT 0,
				diagnostic_count INTEGER NOT NULL DEFAULT 0,
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_alerts",
		SQL: `
			CREATE TABLE IF NOT EXISTS alerts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				batch_id TEXT NOT NULL,
				rule_id TEXT NOT NULL,
				title TEXT NOT NULL,
				severity TEXT NOT NULL,
				details TEXT NOT NULL DEFAULT '',
				primary_event_id TEXT NOT NULL,
				event_ids_json TEXT NOT NULL DEFAULT '[]',
				group_key TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_alerts_batch ON alerts(batch_id);
			CREATE INDEX IF NOT EXISTS idx_alerts_rule ON alerts(rule_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_diagnostics",
		SQL: `
			CREATE TABLE IF NOT EXISTS diagnostics (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				batch_id TEXT NOT NULL,
				rule_id TEXT NOT NULL,
				group_key TEXT NOT NULL DEFAULT '',
				error TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_diagnostics_batch ON diagnostics(batch_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_location_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS city_geocodes (
				city TEXT PRIMARY KEY,
				lat REAL NOT NULL,
				lng REAL NOT NULL
			);
			CREATE TABLE IF NOT EXISTS user_locations (
				user_id TEXT NOT NULL,
				kind TEXT NOT NULL CHECK (kind IN ('work', 'home')),
				city TEXT NOT NULL,
				specific_location TEXT NOT NULL DEFAULT '',
				lat REAL,
				lng REAL,
				PRIMARY KEY (user_id, kind)
			);
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedVersions returns the set of already-applied migration versions.
func (m *MigrationManager) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// Run applies all pending migrations in version order.
func (m *MigrationManager) Run() error {
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if _, err := m.db.Exec(migration.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}
		if _, err := m.db.Exec(
			"INSERT INTO migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		log.Printf("[Database] applied migration %d: %s", migration.Version, migration.Name)
	}
	return nil
}
