// Package sqlite implements the persistence repositories over a SQLite
// database file using the pure-Go modernc.org driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/example/stampcard/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS clubs (
	id                TEXT PRIMARY KEY,
	guild_id          TEXT NOT NULL,
	name              TEXT NOT NULL,
	voice_channel_id  TEXT NOT NULL,
	notify_channel_id TEXT NOT NULL DEFAULT '',
	notify_role_id    TEXT NOT NULL DEFAULT '',
	artwork_key       TEXT NOT NULL DEFAULT '',
	start_time        TEXT NOT NULL,
	window_seconds    INTEGER NOT NULL,
	required_seconds  INTEGER NOT NULL,
	lead_seconds      INTEGER NOT NULL,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL,
	UNIQUE (guild_id, name)
);

CREATE TABLE IF NOT EXISTS stamps (
	member_id  TEXT NOT NULL,
	club_id    TEXT NOT NULL,
	stamp_date TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (member_id, club_id, stamp_date)
);

CREATE INDEX IF NOT EXISTS idx_stamps_club_date ON stamps (club_id, stamp_date);
`

// Storage backs the club and stamp repositories with one SQLite file.
type Storage struct {
	db *sql.DB
}

var (
	_ persistence.ClubRepository  = (*Storage)(nil)
	_ persistence.StampRepository = (*Storage)(nil)
)

// Open opens the database at path and applies the schema. WAL mode and a
// busy timeout keep the single-writer evaluation loop from tripping over
// read-only stats queries.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// isUniqueViolation detects primary-key and unique-constraint rejections so
// callers can treat a raced duplicate insert as "already exists" rather than
// as a failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
