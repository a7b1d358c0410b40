// Package sqlite stores sessions in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expires_at ON sessions (expires_at);
`

var _ sessions.Repo = (*Store)(nil)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Store implements sessions.Repo over SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sessions schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, id string) (sessions.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM sessions WHERE id = ? AND expires_at > ?`,
		id, toMillis(time.Now()),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.Record{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return sessions.Record{}, fmt.Errorf("get session: %w", err)
	}

	var rec sessions.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return sessions.Record{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, id string, record sessions.Record, expiresAt time.Time) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO sessions (id, record, expires_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET record = excluded.record, expires_at = excluded.expires_at`,
		id, string(raw), toMillis(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(n), nil
}
