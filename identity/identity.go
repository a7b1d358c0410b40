// Package identity describes the external identity providers users sign in
// with and the identity they hand back.
package identity

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
)

// UserIdentity is the verified identity returned by a provider after a
// successful exchange. It is copied into the session and never modified.
type UserIdentity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
}

// Provider performs the two network exchanges of a sign-in handshake.
// Implementations never retry; a failure is returned to the caller as is.
type Provider interface {
	// Name is the path segment the provider is mounted under.
	Name() string

	// Initiate obtains a temporary credential. The secret must stay on the
	// server; the redirect URL is where the user consents.
	Initiate(ctx context.Context) (tokenSecret, redirectURL string, err error)

	// Exchange trades the callback's public token and verifier, together
	// with the secret kept from Initiate, for a verified identity.
	Exchange(ctx context.Context, publicToken, verifier, tokenSecret string) (UserIdentity, error)

	// CallbackParams extracts the public token and verifier from the
	// callback query string.
	CallbackParams(query url.Values) (publicToken, verifier string)
}

// Registry looks providers up by name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the named provider or a 404 ErrProviderNotFound.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, apperrors.WithStatus(apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider %q", name), http.StatusNotFound)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
