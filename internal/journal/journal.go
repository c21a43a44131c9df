// Package journal is a local SQLite log of resolved generation attempts.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/text2image/internal/migrations"
)

const timestampLayout = "2006-01-02 15:04:05"

// Outcome values stored in the journal
const (
	OutcomeSucceeded = "succeeded"
	OutcomeService   = "service"
	OutcomeMalformed = "malformed"
	OutcomeTransport = "transport"
)

// Entry is one resolved generation attempt
type Entry struct {
	ID         int64  `json:"id" yaml:"id"`
	Timestamp  string `json:"timestamp" yaml:"timestamp"`
	Prompt     string `json:"prompt" yaml:"prompt"`
	Origin     string `json:"origin" yaml:"origin"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	ImageURL   string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	Status     int    `json:"status,omitempty" yaml:"status,omitempty"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
	RequestID  string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Stale      bool   `json:"stale,omitempty" yaml:"stale,omitempty"`
}

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save appends an entry. A zero Timestamp is replaced by the current time.
func (m *Manager) Save(entry Entry) error {
	timestamp := entry.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Local().Format(timestampLayout)
	}

	_, err := m.db.Exec(`
		INSERT INTO generations (
			timestamp, prompt, origin, outcome, image_url, message,
			status, duration_ms, request_id, stale
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		timestamp,
		entry.Prompt,
		entry.Origin,
		entry.Outcome,
		entry.ImageURL,
		entry.Message,
		entry.Status,
		entry.DurationMs,
		entry.RequestID,
		entry.Stale,
	)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// Load returns up to limit entries, newest first. limit <= 0 means all.
func (m *Manager) Load(limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, prompt, origin, outcome, image_url, message,
		       status, duration_ms, request_id, stale
		FROM generations
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var timestamp string
		var imageURL, message, requestID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.Prompt,
			&entry.Origin,
			&entry.Outcome,
			&imageURL,
			&message,
			&entry.Status,
			&entry.DurationMs,
			&requestID,
			&entry.Stale,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		entry.Timestamp = normalizeTimestamp(timestamp)
		entry.ImageURL = imageURL.String
		entry.Message = message.String
		entry.RequestID = requestID.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// normalizeTimestamp renders stored timestamps as RFC3339
func normalizeTimestamp(raw string) string {
	parsed, err := time.ParseInLocation(timestampLayout, raw, time.Local)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return raw
		}
	}
	return parsed.Format(time.RFC3339)
}

func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM generations"); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM generations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get journal count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
