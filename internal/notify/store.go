package notify

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/opswatch/console/internal/events"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS check_updates (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	check_id    INTEGER NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	received_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_check_updates_received ON check_updates(received_at);
`

// Entry is one stored notification.
type Entry struct {
	ID         int64
	CheckID    int
	Status     string
	Message    string
	ReceivedAt time.Time
}

// Store keeps notification history in a local SQLite database, so check
// updates that arrived while no one was watching remain reviewable.
// It implements events.Sink.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// NewStore opens (creating if needed) the history database at path.
func NewStore(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("notify: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("notify: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("notify: set busy timeout: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("notify: create schema: %w", err)
	}
	return &Store{db: db, logger: logger.With("component", "notify")}, nil
}

// CheckUpdate implements events.Sink. Storage failures are logged, never
// propagated: history must not break the channel.
func (s *Store) CheckUpdate(u events.CheckUpdate) {
	if err := s.Append(u); err != nil {
		s.logger.Warn("history write failed", "err", err)
	}
}

// Append records one notification.
func (s *Store) Append(u events.CheckUpdate) error {
	_, err := s.db.Exec(
		"INSERT INTO check_updates (check_id, status, message, received_at) VALUES (?, ?, ?, ?)",
		u.CheckID, u.Status, u.Message, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("notify: insert: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		"SELECT id, check_id, status, message, received_at FROM check_updates ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("notify: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.CheckID, &e.Status, &e.Message, &ts); err != nil {
			return nil, fmt.Errorf("notify: scan: %w", err)
		}
		e.ReceivedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
