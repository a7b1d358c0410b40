// Package authflow is the sign-in state machine for one identity provider.
//
// A session moves ANONYMOUS -> PENDING on Initiate, PENDING -> AUTHENTICATED
// on a successful Callback, and back to ANONYMOUS only on Logout. Each
// transition takes the current session record and returns the record to
// store; on error the input record is returned unchanged.
package authflow

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/rs/zerolog/log"
)

// Outcome tells the dispatcher where to send the client.
type Outcome int

const (
	// RedirectProvider sends the client to Result.RedirectURL to consent.
	RedirectProvider Outcome = iota + 1
	// AlreadyAuthenticated sends the client home without starting a handshake.
	AlreadyAuthenticated
	// RedirectHome sends the client home after a completed transition.
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case RedirectProvider:
		return "redirect_provider"
	case AlreadyAuthenticated:
		return "already_authenticated"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome     Outcome
	RedirectURL string
}

type Controller struct {
	provider identity.Provider
	now      func() time.Time
}

func New(provider identity.Provider) *Controller {
	return &Controller{provider: provider, now: time.Now}
}

// WithClock replaces the clock used to stamp pending handshakes.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Initiate starts a handshake. An authenticated session is left alone.
func (c *Controller) Initiate(ctx context.Context, rec sessions.Record) (sessions.Record, Result, error) {
	if rec.Authenticated() {
		c.logTransition(ctx, "initiate", rec, rec)
		return rec, Result{Outcome: AlreadyAuthenticated}, nil
	}

	tokenSecret, redirectURL, err := c.provider.Initiate(ctx)
	if err != nil {
		return rec, Result{}, err
	}

	next := rec.WithTokenSecret(tokenSecret, c.now())
	c.logTransition(ctx, "initiate", rec, next)
	return next, Result{Outcome: RedirectProvider, RedirectURL: redirectURL}, nil
}

// Callback completes a handshake with the public token and verifier from the
// provider's redirect. It fails without touching the record when the session
// holds no token secret, so a replayed or cross-session callback can never
// authenticate.
func (c *Controller) Callback(ctx context.Context, rec sessions.Record, publicToken, verifier string) (sessions.Record, Result, error) {
	if rec.Authenticated() {
		c.logTransition(ctx, "callback", rec, rec)
		return rec, Result{Outcome: AlreadyAuthenticated}, nil
	}
	if rec.TokenSecret == "" {
		return rec, Result{}, apperrors.WithStatus(apperrors.ErrMissingTokenSecret, http.StatusBadRequest)
	}
	if publicToken == "" || verifier == "" {
		return rec, Result{}, apperrors.WithStatus(apperrors.ErrMissingCallbackParams, http.StatusBadRequest)
	}

	user, err := c.provider.Exchange(ctx, publicToken, verifier, rec.TokenSecret)
	if err != nil {
		return rec, Result{}, err
	}
	if user.Provider == "" {
		user.Provider = c.provider.Name()
	}

	next := rec.WithUser(user)
	c.logTransition(ctx, "callback", rec, next)
	return next, Result{Outcome: RedirectHome}, nil
}

// Logout signs the session out. It is idempotent and cannot fail.
func (c *Controller) Logout(ctx context.Context, rec sessions.Record) (sessions.Record, Result) {
	next := rec.WithoutUser().WithoutTokenSecret()
	c.logTransition(ctx, "logout", rec, next)
	return next, Result{Outcome: RedirectHome}
}

func (c *Controller) logTransition(ctx context.Context, op string, from, to sessions.Record) {
	log.Ctx(ctx).Info().
		Str("provider", c.provider.Name()).
		Str("op", op).
		Stringer("from", from.State()).
		Stringer("to", to.State()).
		Msg("Auth transition")
}
