package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all journal migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add outcome and prompt indices",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_generations_outcome ON generations(outcome);
			CREATE INDEX IF NOT EXISTS idx_generations_prompt ON generations(prompt);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_generations_outcome;
			DROP INDEX IF EXISTS idx_generations_prompt;
		`,
	},
	{
		Version: 2,
		Name:    "Add stale column to generations",
		Up: `
			ALTER TABLE generations ADD COLUMN stale INTEGER NOT NULL DEFAULT 0;
		`,
		Down: `
			-- SQLite does not support DROP COLUMN on older versions
		`,
	},
	{
		Version: 3,
		Name:    "Add request_id index",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_generations_request_id ON generations(request_id);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_generations_request_id;
		`,
	},
}

// InitSchema creates the base tables. Later columns come from AllMigrations.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		prompt TEXT NOT NULL,
		origin TEXT NOT NULL,
		outcome TEXT NOT NULL,
		image_url TEXT,
		message TEXT,
		status INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		request_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_generations_timestamp ON generations(timestamp DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return err
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec(migration.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
