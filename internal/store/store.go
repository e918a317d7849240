// Package store provides SQLite-backed persistence for ScrumPilot.
//
// The store is a small document store: task containers are kept as JSON
// documents in a single column, raw transcripts and meeting notes as rows,
// and the ticket counter as a single integer row updated atomically.
//
// Concurrency: only the ticket counter is safe under concurrent writers
// (single-statement atomic increment). Container patches are read-modify-write
// and two overlapping runs can race on the same container; this is an
// accepted limitation of the design, not a guarantee.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/mrz1836/scrumpilot/internal/errors"
)

// Store provides access to the ScrumPilot SQLite database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open creates a Store at the given path and runs migrations.
// The parent directory is created when missing.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create db directory")
	}

	// WAL mode for better concurrency between overlapping runs.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(errors.ErrStorage, err.Error())
	}
	return nil
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS containers (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		document TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		title TEXT,
		meeting_date DATETIME NOT NULL,
		content TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meeting_notes (
		transcript_id TEXT PRIMARY KEY,
		summary TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		FOREIGN KEY (transcript_id) REFERENCES transcripts(id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		job TEXT PRIMARY KEY,
		last_run_at DATETIME NOT NULL,
		last_status TEXT NOT NULL,
		last_success_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_containers_created_at ON containers(created_at);
	CREATE INDEX IF NOT EXISTS idx_transcripts_meeting_date ON transcripts(meeting_date);
	`

	_, err := s.db.Exec(schema)
	return err
}
