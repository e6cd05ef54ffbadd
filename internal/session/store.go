// Package session holds the process-wide default scope: the active
// board and active workspace. The record survives restarts via a small
// SQLite database; durability is best-effort — a broken store degrades
// the server to in-memory session state, it never takes it down.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Context is the persisted session record. Both fields are optional.
type Context struct {
	ActiveBoardID     string `json:"activeBoardId,omitempty"`
	ActiveWorkspaceID string `json:"activeWorkspaceId,omitempty"`
}

// Store defines session persistence. Abstracted for testability.
type Store interface {
	Load() (Context, error)
	Save(Context) error
	Close() error
}

// Config holds session store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the session database under ~/.mcp-trello,
// overridable via MCP_TRELLO_DATA_DIR.
func DefaultConfig() Config {
	if dir := os.Getenv("MCP_TRELLO_DATA_DIR"); dir != "" {
		return Config{DataDir: dir}
	}
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".mcp-trello")}
}

// SQLiteStore implements Store on a single-row SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the session database and
// runs the idempotent migration.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("session: creating data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("session: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session_context (
			id                  INTEGER PRIMARY KEY CHECK (id = 1),
			active_board_id     TEXT NOT NULL DEFAULT '',
			active_workspace_id TEXT NOT NULL DEFAULT '',
			updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

// Load reads the persisted record. A missing row is a normal empty
// context, not an error.
func (s *SQLiteStore) Load() (Context, error) {
	var sc Context
	err := s.db.QueryRow(
		`SELECT active_board_id, active_workspace_id FROM session_context WHERE id = 1`,
	).Scan(&sc.ActiveBoardID, &sc.ActiveWorkspaceID)
	if err == sql.ErrNoRows {
		return Context{}, nil
	}
	if err != nil {
		return Context{}, fmt.Errorf("session: loading context: %w", err)
	}
	return sc, nil
}

// Save overwrites the record. Called after every successful mutation.
func (s *SQLiteStore) Save(sc Context) error {
	_, err := s.db.Exec(`
		INSERT INTO session_context (id, active_board_id, active_workspace_id, updated_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			active_board_id     = excluded.active_board_id,
			active_workspace_id = excluded.active_workspace_id,
			updated_at          = excluded.updated_at
	`, sc.ActiveBoardID, sc.ActiveWorkspaceID)
	if err != nil {
		return fmt.Errorf("session: saving context: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
