package config

import "time"

type SessionConfig interface {
	GetSessionStore() string
	GetSessionDSN() string
	GetSessionMaxAge() time.Duration
	GetSessionPendingTTL() time.Duration
	GetSessionReapInterval() time.Duration
}

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreBolt   = "bolt"
)

// GetSessionStore names the session backend: memory, sqlite or bolt.
func (c mainConfig) GetSessionStore() string {
	return c.values.SessionStore
}

// GetSessionDSN is the file path used by the sqlite and bolt backends.
func (c mainConfig) GetSessionDSN() string {
	return c.values.SessionDSN
}

func (c mainConfig) GetSessionMaxAge() time.Duration {
	return c.values.SessionMaxAge
}

// GetSessionPendingTTL bounds how long a token secret may wait for its
// callback. Zero keeps it for the lifetime of the session.
func (c mainConfig) GetSessionPendingTTL() time.Duration {
	return c.values.SessionPendingTTL
}

func (c mainConfig) GetSessionReapInterval() time.Duration {
	return c.values.SessionReapInterval
}
