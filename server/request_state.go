package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-signin-server/identity"
	"github.com/jrsteele09/go-signin-server/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyRequestState stores the request's *requestScope
const ContextKeyRequestState ContextKey = "request_state"

// RequestState is what the middleware stages know about a request. Each
// stage reads the current value, builds the next one and stores it back.
type RequestState struct {
	RequestID  string
	ClientAddr string
	Scheme     string
	Session    sessions.Session
}

type requestScope struct {
	state     RequestState
	committed bool
}

func withRequestState(ctx context.Context, state RequestState) context.Context {
	return context.WithValue(ctx, ContextKeyRequestState, &requestScope{state: state})
}

func scopeFrom(ctx context.Context) *requestScope {
	scope, _ := ctx.Value(ContextKeyRequestState).(*requestScope)
	return scope
}

// StateFrom returns the request state installed by the standard middleware.
func StateFrom(ctx context.Context) (RequestState, bool) {
	scope := scopeFrom(ctx)
	if scope == nil {
		return RequestState{}, false
	}
	return scope.state, true
}

func storeState(ctx context.Context, state RequestState) {
	if scope := scopeFrom(ctx); scope != nil {
		scope.state = state
	}
}

// CurrentUser returns the signed-in user for the request, if any. This is
// the only authentication signal application handlers should use.
func CurrentUser(r *http.Request) (identity.UserIdentity, bool) {
	state, ok := StateFrom(r.Context())
	if !ok || state.Session.Record.User == nil {
		return identity.UserIdentity{}, false
	}
	return *state.Session.Record.User, true
}
