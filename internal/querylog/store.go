package querylog

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazybrowse/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = "2006-01-02 15:04:05.000"

// Store persists executed queries and the last location of each project
type Store struct {
	db         *sql.DB
	maxEntries int
	now        func() time.Time
}

// NewStore opens (or creates) the store at path. When maxEntries is positive
// older entries are pruned as new ones are recorded.
func NewStore(path string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create query log schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries, now: time.Now}, nil
}

// Record adds an executed query
func (s *Store) Record(entry models.QueryLogEntry) error {
	executedAt := entry.ExecutedAt
	if executedAt.IsZero() {
		executedAt = s.now()
	}

	_, err := s.db.Exec(`
		INSERT INTO query_log
		(project_id, tab_name, query, statement, executed_at, duration_ms, row_count, success, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ProjectID,
		entry.TabName,
		entry.Query,
		entry.Statement,
		executedAt.UTC().Format(timeLayout),
		entry.Duration.Milliseconds(),
		entry.RowCount,
		entry.Success,
		entry.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	if s.maxEntries > 0 {
		return s.prune(s.maxEntries)
	}
	return nil
}

func (s *Store) prune(keep int) error {
	_, err := s.db.Exec(`
		DELETE FROM query_log
		WHERE id NOT IN (SELECT id FROM query_log ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune query log: %w", err)
	}
	return nil
}

// Recent retrieves the most recent entries of a project, newest first
func (s *Store) Recent(projectID, limit int) ([]models.QueryLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, tab_name, query, statement, executed_at,
		       duration_ms, row_count, success, message
		FROM query_log
		WHERE project_id = ?
		ORDER BY id DESC
		LIMIT ?`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read query log: %w", err)
	}
	return scanEntries(rows)
}

// Search finds entries of a project whose query contains text
func (s *Store) Search(projectID int, text string, limit int) ([]models.QueryLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, tab_name, query, statement, executed_at,
		       duration_ms, row_count, success, message
		FROM query_log
		WHERE project_id = ? AND query LIKE ?
		ORDER BY id DESC
		LIMIT ?`, projectID, "%"+text+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search query log: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.QueryLogEntry, error) {
	defer func() { _ = rows.Close() }()

	var entries []models.QueryLogEntry
	for rows.Next() {
		var e models.QueryLogEntry
		var durationMs int64
		var executedAt string

		err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.TabName,
			&e.Query,
			&e.Statement,
			&executedAt,
			&durationMs,
			&e.RowCount,
			&e.Success,
			&e.Message,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query log entry: %w", err)
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.ExecutedAt, _ = time.Parse(timeLayout, executedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SaveLocation remembers the location last shown for a project
func (s *Store) SaveLocation(projectID int, location string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_location (project_id, location, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET location = excluded.location, updated_at = excluded.updated_at`,
		projectID, location, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// LoadLocation returns the saved location of a project
func (s *Store) LoadLocation(projectID int) (string, bool, error) {
	var location string
	err := s.db.QueryRow(`SELECT location FROM session_location WHERE project_id = ?`, projectID).Scan(&location)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load location: %w", err)
	}
	return location, true, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
