// Package openid maps an OpenID Connect authorization-code flow with PKCE
// onto the two-step identity.Provider handshake.
//
// The PKCE code verifier plays the part of the token secret: it is kept in
// the session and never leaves the server until the code exchange. The state
// parameter is derived from it, so a callback only matches the session that
// started it.
package openid

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"golang.org/x/oauth2"
)

const (
	DefaultName = "oidc"

	defaultTimeout = 10 * time.Second
)

var _ identity.Provider = (*Provider)(nil)

type Config struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Timeout bounds the code exchange. Zero means 10s.
	Timeout time.Duration
}

type Provider struct {
	name         string
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	timeout      time.Duration
}

// New discovers the issuer's endpoints and signing keys.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("[openid New] failed to discover issuer %s: %w", cfg.Issuer, err)
	}
	return NewWithVerifier(cfg, provider.Endpoint(), provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}))
}

// NewWithVerifier builds a provider from known endpoints without discovery.
func NewWithVerifier(cfg Config, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("[openid New] client id is required")
	}
	if verifier == nil {
		return nil, errors.New("[openid New] id token verifier is required")
	}
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		name: name,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
		},
		verifier: verifier,
		timeout:  timeout,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Initiate(ctx context.Context) (string, string, error) {
	codeVerifier := oauth2.GenerateVerifier()
	authURL := p.oauth2Config.AuthCodeURL(StateFor(codeVerifier), oauth2.S256ChallengeOption(codeVerifier))
	return codeVerifier, authURL, nil
}

func (p *Provider) Exchange(ctx context.Context, state, code, codeVerifier string) (identity.UserIdentity, error) {
	if codeVerifier == "" {
		return identity.UserIdentity{}, apperrors.WithStatus(apperrors.ErrMissingTokenSecret, http.StatusBadRequest)
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(StateFor(codeVerifier))) != 1 {
		return identity.UserIdentity{}, apperrors.WithStatus(apperrors.ErrStateMismatch, http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return identity.UserIdentity{}, apperrors.WithStatus(fmt.Errorf("%w: code exchange: %w", apperrors.ErrProviderRejected, err), http.StatusUnauthorized)
		}
		return identity.UserIdentity{}, apperrors.WithStatus(fmt.Errorf("%w: code exchange: %w", apperrors.ErrProviderUnavailable, err), http.StatusBadGateway)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return identity.UserIdentity{}, apperrors.WithStatus(fmt.Errorf("%w: no id_token in token response", apperrors.ErrProviderRejected), http.StatusBadGateway)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return identity.UserIdentity{}, apperrors.WithStatus(fmt.Errorf("%w: id token: %w", apperrors.ErrProviderRejected, err), http.StatusUnauthorized)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return identity.UserIdentity{}, apperrors.WithStatus(fmt.Errorf("%w: id token claims: %w", apperrors.ErrProviderRejected, err), http.StatusUnauthorized)
	}

	name := claims.PreferredUsername
	if name == "" {
		name = claims.Name
	}
	if name == "" {
		name = idToken.Subject
	}
	return identity.UserIdentity{ID: idToken.Subject, Name: name, Provider: p.name}, nil
}

func (p *Provider) CallbackParams(query url.Values) (string, string) {
	return query.Get("state"), query.Get("code")
}

// StateFor derives the state parameter sent with the authorization request.
func StateFor(codeVerifier string) string {
	sum := sha256.Sum256([]byte("state:" + codeVerifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
