// Package bbolt stores sessions in a BoltDB file.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	"go.etcd.io/bbolt"
)

const sessionBucket = "sessions"

var _ sessions.Repo = (*Store)(nil)

type storedRecord struct {
	Record    sessions.Record `json:"record"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Store provides a BoltDB-backed session store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions bucket: %w", err)
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
	if err := ctx.Err(); err != nil {
		return sessions.Record{}, err
	}

	var stored storedRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(sessionBucket)).Get([]byte(id))
		if payload == nil {
			return nil
		}
		found = true
		return json.Unmarshal(payload, &stored)
	})
	if err != nil {
		return sessions.Record{}, fmt.Errorf("get session: %w", err)
	}
	if !found || !stored.ExpiresAt.After(time.Now()) {
		return sessions.Record{}, apperrors.ErrSessionNotFound
	}
	return stored.Record, nil
}

func (s *Store) Put(ctx context.Context, id string, record sessions.Record, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(storedRecord{Record: record, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(id), payload)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete([]byte(id))
	})
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))

		// Keys are collected first; bbolt forbids mutating a bucket during ForEach.
		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("decode session %s: %w", k, err)
			}
			if !stored.ExpiresAt.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return removed, nil
}
