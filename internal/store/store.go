// Package store provides durable local persistence for the league
// document and its companion state.
//
// Storage is an embedded SQLite database in WAL mode holding a small
// key-value table. Three keys are persisted, each loaded at startup and
// saved on its own mutation path:
//
//   - league-document: the full local document, UI state included
//   - session: the signed-in profile (never the credential)
//   - remote-config: the transport strategy configuration
//
// A persistence failure is not fatal to the session: callers log it and
// carry on with the in-memory document as the authority.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/session"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Persisted keys.
const (
	keyDocument     = "league-document"
	keySession      = "session"
	keyRemoteConfig = "remote-config"
)

// Store wraps the SQLite connection holding local state.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the local database at the specified path.
//
// The database runs in embedded mode with WAL for concurrent reads and a
// busy timeout so the daemon and a one-shot CLI invocation can coexist.
// The caller MUST call Close() when done.
//
// Example:
//
//	st, err := store.Open(filepath.Join(dataDir, "rackline.db"))
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	st := &Store{conn: conn, path: path}

	if _, err := st.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := st.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := st.initSchema(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the database, checkpointing the WAL first.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// initSchema creates the key-value table. Idempotent.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// put upserts one key. The value is stored as JSON text.
func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// get loads one key into v. Returns (false, nil) when the key is absent.
func (s *Store) get(key string, v any) (bool, error) {
	var raw string
	err := s.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// delete removes one key. Missing keys are not an error.
func (s *Store) delete(key string) error {
	if _, err := s.conn.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// LoadDocument returns the persisted league document, or a fresh empty
// one when none has been saved yet.
func (s *Store) LoadDocument() (*league.Document, error) {
	var doc league.Document
	found, err := s.get(keyDocument, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return league.NewDocument(), nil
	}
	if doc.Players == nil {
		doc.Players = []*league.Player{}
	}
	if doc.Matches == nil {
		doc.Matches = []*league.Match{}
	}
	if doc.Filters.PlayerID == "" {
		doc.Filters = league.DefaultFilters()
	}
	return &doc, nil
}

// SaveDocument persists the full local document, UI state included.
func (s *Store) SaveDocument(doc *league.Document) error {
	return s.put(keyDocument, doc)
}

// LoadSession returns the persisted session, or nil when signed out.
func (s *Store) LoadSession() (*session.Session, error) {
	var sess session.Session
	found, err := s.get(keySession, &sess)
	if err != nil {
		return nil, err
	}
	if !found || sess.User == nil {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession persists the session profile.
func (s *Store) SaveSession(sess *session.Session) error {
	return s.put(keySession, sess)
}

// ClearSession removes the persisted session.
func (s *Store) ClearSession() error {
	return s.delete(keySession)
}

// LoadRemoteConfig returns the persisted transport configuration, or an
// empty (disabled) configuration when none is saved.
func (s *Store) LoadRemoteConfig() (*remote.Config, error) {
	var cfg remote.Config
	if _, err := s.get(keyRemoteConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveRemoteConfig persists the transport configuration.
func (s *Store) SaveRemoteConfig(cfg *remote.Config) error {
	return s.put(keyRemoteConfig, cfg)
}

// ClearRemoteConfig removes the transport configuration.
func (s *Store) ClearRemoteConfig() error {
	return s.delete(keyRemoteConfig)
}
