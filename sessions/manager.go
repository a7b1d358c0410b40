package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const sessionIDLength = 32

// Session is the record for one request together with its id.
type Session struct {
	ID     string
	Record Record
	// IsNew is true when no stored session matched the request's cookie.
	IsNew bool
}

// SaveOutcome tells the caller what happened to the cookie-side of a session.
type SaveOutcome int

const (
	// SaveSkipped: a new session that never held anything; no cookie is issued.
	SaveSkipped SaveOutcome = iota
	// SavePersisted: the record was written and the cookie should be (re)issued.
	SavePersisted
	// SaveDeleted: the session became empty and was removed; the cookie should be cleared.
	SaveDeleted
)

type ManagerConfig struct {
	// MaxAge is the idle lifetime of a session. Every save pushes the expiry out again.
	MaxAge time.Duration
	// PendingTTL bounds how long a token secret waits for its callback. Zero disables it.
	PendingTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager loads and saves sessions on behalf of the HTTP layer.
type Manager struct {
	repo   Repo
	codec  *CookieCodec
	config ManagerConfig
}

func NewManager(repo Repo, codec *CookieCodec, config ManagerConfig) *Manager {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Manager{repo: repo, codec: codec, config: config}
}

func (m *Manager) MaxAge() time.Duration {
	return m.config.MaxAge
}

// Load resolves the session named by a cookie value. A missing, forged,
// unknown or expired cookie yields a fresh empty session. Only a store
// failure is returned as an error.
func (m *Manager) Load(ctx context.Context, cookieValue string) (Session, error) {
	if cookieValue == "" {
		return m.newSession(), nil
	}

	id, err := m.codec.Decode(cookieValue)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Ignoring session cookie")
		return m.newSession(), nil
	}

	record, err := m.repo.Get(ctx, id)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return m.newSession(), nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("[sessions Load] %w", err)
	}

	if record.TokenSecret != "" && m.config.PendingTTL > 0 && m.config.Now().Sub(record.PendingSince) > m.config.PendingTTL {
		log.Ctx(ctx).Debug().Time("pending_since", record.PendingSince).Msg("Dropping stale token secret")
		record = record.WithoutTokenSecret()
	}

	return Session{ID: id, Record: record}, nil
}

// Save writes the session back, extending its expiry.
func (m *Manager) Save(ctx context.Context, s Session) (SaveOutcome, error) {
	switch {
	case s.Record.IsEmpty() && s.IsNew:
		return SaveSkipped, nil
	case s.Record.IsEmpty():
		if err := m.repo.Delete(ctx, s.ID); err != nil {
			return SaveSkipped, fmt.Errorf("[sessions Save] delete: %w", err)
		}
		return SaveDeleted, nil
	}

	if err := m.repo.Put(ctx, s.ID, s.Record, m.config.Now().Add(m.config.MaxAge)); err != nil {
		return SaveSkipped, fmt.Errorf("[sessions Save] put: %w", err)
	}
	return SavePersisted, nil
}

// CookieValue signs the session id for the session cookie.
func (m *Manager) CookieValue(s Session) (string, error) {
	return m.codec.Encode(s.ID, m.config.Now())
}

func (m *Manager) newSession() Session {
	return Session{ID: NewID(), IsNew: true}
}

// NewID returns an unguessable session id.
func NewID() string {
	b := make([]byte, sessionIDLength)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
