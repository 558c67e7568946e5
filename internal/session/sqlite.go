package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paragraphhotels/messenger-bot-go/internal/classify"
	apperrors "github.com/paragraphhotels/messenger-bot-go/internal/errors"
	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// SQLiteStore persists sessions in SQLite so conversational state survives
// process restarts. Restart-durability is a configuration choice, not a
// rewrite: the store satisfies the same Store interface as MemoryStore.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	state           TEXT NOT NULL DEFAULT 'new',
	language        TEXT NOT NULL DEFAULT '',
	greeted         INTEGER NOT NULL DEFAULT 0,
	ended           INTEGER NOT NULL DEFAULT 0,
	last_input      TEXT NOT NULL DEFAULT '',
	last_reply_hash TEXT NOT NULL DEFAULT '',
	last_seen       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);
`

// NewSQLiteStore opens (creating if needed) the session database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// WAL mode for better concurrency between the webhook path and the janitor
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(sessionSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

// GetOrCreate returns the session for id, inserting a fresh one if needed.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	sess, err := s.get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, apperrors.ErrSessionNotFound) {
		return Session{}, err
	}

	sess = New(id)
	if err := s.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLiteStore) get(ctx context.Context, id string) (Session, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, state, language, greeted, ended, last_input, last_reply_hash, last_seen
		 FROM sessions WHERE id = ?`, id)

	var sess Session
	var state, language string
	if err := row.Scan(&sess.ID, &state, &language, &sess.Greeted, &sess.Ended,
		&sess.LastInput, &sess.LastReplyHash, &sess.LastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, apperrors.ErrSessionNotFound
		}
		return Session{}, err
	}
	sess.State = State(state)
	sess.Language = classify.Language(language)
	return sess, nil
}

// Save upserts the session record, refreshing its LastSeen.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	sess.LastSeen = time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, state, language, greeted, ended, last_input, last_reply_hash, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			language = excluded.language,
			greeted = excluded.greeted,
			ended = excluded.ended,
			last_input = excluded.last_input,
			last_reply_hash = excluded.last_reply_hash,
			last_seen = excluded.last_seen`,
		sess.ID, string(sess.State), string(sess.Language), sess.Greeted, sess.Ended,
		sess.LastInput, sess.LastReplyHash, sess.LastSeen)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Reset overwrites the session with defaults.
func (s *SQLiteStore) Reset(ctx context.Context, id string) (Session, error) {
	sess := New(id)
	if err := s.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Touch refreshes the inactivity timer.
func (s *SQLiteStore) Touch(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET last_seen = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Idle lists sessions idle longer than window, skipping fresh ones.
func (s *SQLiteStore) Idle(ctx context.Context, window time.Duration) ([]Session, error) {
	cutoff := time.Now().Add(-window)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, state, language, greeted, ended, last_input, last_reply_hash, last_seen
		 FROM sessions WHERE state != ? AND last_seen < ?`, string(StateNew), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var idle []Session
	for rows.Next() {
		var sess Session
		var state, language string
		if err := rows.Scan(&sess.ID, &state, &language, &sess.Greeted, &sess.Ended,
			&sess.LastInput, &sess.LastReplyHash, &sess.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.State = State(state)
		sess.Language = classify.Language(language)
		idle = append(idle, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return idle, nil
}

// Expire resets id if it is still idle longer than window. The reset is a
// conditional UPDATE keyed on last_seen, so a Save landing between the Idle
// scan and this call keeps the session alive.
func (s *SQLiteStore) Expire(ctx context.Context, id string, window time.Duration) (Session, bool, error) {
	cutoff := time.Now().Add(-window)

	old, err := s.get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	if old.State == StateNew || old.LastSeen.After(cutoff) {
		return Session{}, false, nil
	}

	fresh := New(id)
	res, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET
			state = ?, language = '', greeted = 0, ended = 0,
			last_input = '', last_reply_hash = '', last_seen = ?
		 WHERE id = ? AND state != ? AND last_seen < ?`,
		string(fresh.State), fresh.LastSeen, id, string(StateNew), cutoff)
	if err != nil {
		return Session{}, false, fmt.Errorf("failed to expire session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Session{}, false, err
	}
	if affected == 0 {
		return Session{}, false, nil
	}
	return old, true, nil
}

// Count returns the number of sessions currently held.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Ready checks database connectivity for the readiness probe.
func (s *SQLiteStore) Ready(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
