package sessions

import (
	"context"
	"time"
)

// Repo is the session backing store. Operations are atomic per session id;
// nothing ever spans two sessions.
type Repo interface {
	// Get returns the record stored under id. Missing and expired sessions
	// both return errors.ErrSessionNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Put creates or replaces the record and sets its expiry.
	Put(ctx context.Context, id string, record Record, expiresAt time.Time) error

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
