// Package store provides the SQLite-backed reference implementation of
// samsara's collaborator interfaces: the embedding table backing the
// Recall Engine, the bandit and weight-learner state tables backing
// Turiya and Hybrid persistence, and a minimal SessionStore/MemoryStore
// pair satisfying internal/collab for local smoke-testing. It exists to
// exercise those contracts, not as the only valid backend; production
// deployments may point the router at any store implementing collab's
// interfaces instead.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"samsara/internal/logging"
	"samsara/internal/samsaraerr"
)

// Store wraps a single SQLite connection shared by the embedding table,
// bandit state table, and the reference session/memory stores. The
// teacher's LocalStore pins MaxOpenConns(1) against the same file for the
// same reason: SQLite serializes writers anyway, and a single connection
// avoids "database is locked" errors under WAL without extra locking.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open opens (creating if necessary) the SQLite database at path and runs
// the embedded schema.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, samsaraerr.New(samsaraerr.Fatal, "store.Open", fmt.Errorf("create directory %s: %w", dir, err))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, samsaraerr.New(samsaraerr.Fatal, "store.Open", fmt.Errorf("open database: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, samsaraerr.New(samsaraerr.Fatal, "store.Open", fmt.Errorf("migrate schema: %w", err))
	}
	logging.Store("opened store at %s", path)
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS embedding_entries (
	id          TEXT PRIMARY KEY,
	vector      BLOB NOT NULL,
	dimensions  INTEGER NOT NULL,
	source_type TEXT NOT NULL,
	source_id   TEXT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '{}',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_embedding_entries_source_id ON embedding_entries(source_id);

CREATE TABLE IF NOT EXISTS bandit_state (
	project    TEXT PRIMARY KEY,
	schema     INTEGER NOT NULL,
	state_json TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS weight_learner_state (
	project    TEXT PRIMARY KEY,
	state_json TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT NOT NULL,
	project    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (id, project)
);
CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project);

CREATE TABLE IF NOT EXISTS turns (
	session_id      TEXT NOT NULL,
	project         TEXT NOT NULL,
	turn_number     INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	tool_calls_json TEXT NOT NULL DEFAULT '[]',
	tokens_consumed INTEGER NOT NULL DEFAULT 0,
	started_at      INTEGER NOT NULL,
	PRIMARY KEY (session_id, project, turn_number)
);

CREATE TABLE IF NOT EXISTS memory_scopes (
	scope_type TEXT NOT NULL,
	scope_key  TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (scope_type, scope_key)
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
