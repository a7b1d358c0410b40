package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type storedRecord struct {
	record    Record
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]storedRecord
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]storedRecord),
	}
}

// Get retrieves a session record by ID
func (r *InMemoryRepo) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[id]
	if !ok || !stored.expiresAt.After(time.Now()) {
		return Record{}, apperrors.ErrSessionNotFound
	}

	return copyRecord(stored.record), nil
}

// Put creates or updates a session record
func (r *InMemoryRepo) Put(ctx context.Context, id string, record Record, expiresAt time.Time) error {
	if id == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	r.sessions[id] = storedRecord{record: copyRecord(record), expiresAt: expiresAt}
	return nil
}

// Delete removes a session record
func (r *InMemoryRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteExpired removes every session that has expired by now
func (r *InMemoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, stored := range r.sessions {
		if !stored.expiresAt.After(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func copyRecord(rec Record) Record {
	if rec.User != nil {
		user := *rec.User
		rec.User = &user
	}
	return rec
}
