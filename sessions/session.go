package sessions

import (
	"time"

	"github.com/jrsteele09/go-signin-server/identity"
)

// State is the sign-in state of a session, derived from its record.
type State int

const (
	StateAnonymous State = iota
	StatePending
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "ANONYMOUS"
	}
}

// Record is the server-side state of one browser session.
//
// TokenSecret is set while a handshake is in flight and removed by a
// successful callback. User is set once the handshake completes and is the
// only signal that the session is authenticated.
type Record struct {
	TokenSecret  string                 `json:"tokenSecret,omitempty"`
	PendingSince time.Time              `json:"pendingSince"`
	User         *identity.UserIdentity `json:"user,omitempty"`
}

func (r Record) State() State {
	if r.User != nil {
		return StateAuthenticated
	}
	if r.TokenSecret != "" {
		return StatePending
	}
	return StateAnonymous
}

func (r Record) Authenticated() bool {
	return r.User != nil
}

// DisplayName is the signed-in user's name, or "" for anonymous sessions.
func (r Record) DisplayName() string {
	if r.User == nil {
		return ""
	}
	return r.User.Name
}

// IsEmpty reports whether the record holds nothing worth persisting.
func (r Record) IsEmpty() bool {
	return r.User == nil && r.TokenSecret == ""
}

// WithUser returns a copy of r authenticated as user, with any pending
// token secret removed.
func (r Record) WithUser(user identity.UserIdentity) Record {
	r.User = &user
	r.TokenSecret = ""
	r.PendingSince = time.Time{}
	return r
}

// WithTokenSecret returns a copy of r with an in-flight handshake secret.
func (r Record) WithTokenSecret(secret string, at time.Time) Record {
	r.TokenSecret = secret
	r.PendingSince = at
	return r
}

// WithoutTokenSecret returns a copy of r with the handshake secret dropped.
func (r Record) WithoutTokenSecret() Record {
	r.TokenSecret = ""
	r.PendingSince = time.Time{}
	return r
}

// WithoutUser returns a copy of r signed out.
func (r Record) WithoutUser() Record {
	r.User = nil
	return r
}
