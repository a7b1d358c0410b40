package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-signin-server/identity"
	"github.com/jrsteele09/go-signin-server/identity/openid"
	"github.com/jrsteele09/go-signin-server/identity/twitter"
	"github.com/jrsteele09/go-signin-server/internal/config"
	"github.com/jrsteele09/go-signin-server/sessions"
	boltstore "github.com/jrsteele09/go-signin-server/sessions/bbolt"
	sqlitestore "github.com/jrsteele09/go-signin-server/sessions/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const devEnv = "DEV"

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == devEnv {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openRepo opens the session store named by SESSION_STORE. The returned func
// releases it.
func openRepo(c config.Config) (sessions.Repo, func() error, error) {
	noop := func() error { return nil }

	switch c.GetSessionStore() {
	case config.SessionStoreMemory:
		return sessions.NewInMemoryRepo(), noop, nil
	case config.SessionStoreSQLite:
		if err := ensureDir(c.GetSessionDSN()); err != nil {
			return nil, nil, err
		}
		store, err := sqlitestore.Open(c.GetSessionDSN())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.SessionStoreBolt:
		if err := ensureDir(c.GetSessionDSN()); err != nil {
			return nil, nil, err
		}
		store, err := boltstore.Open(c.GetSessionDSN())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("[openRepo] unknown session store %q", c.GetSessionStore())
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[openRepo] create %s: %w", dir, err)
	}
	return nil
}

func newSessionManager(c config.Config, repo sessions.Repo) (*sessions.Manager, error) {
	secret := c.GetCookieSecret()
	if secret == "" {
		if c.GetEnv() != devEnv {
			return nil, fmt.Errorf("[newSessionManager] COOKIE_SECRET must be set when ENV=%s", c.GetEnv())
		}
		secret = generateSecret()
		log.Warn().Msg("COOKIE_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	codec, err := sessions.NewCookieCodec(secret)
	if err != nil {
		return nil, err
	}
	return sessions.NewManager(repo, codec, sessions.ManagerConfig{
		MaxAge:     c.GetSessionMaxAge(),
		PendingTTL: c.GetSessionPendingTTL(),
	}), nil
}

func generateSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// newProviderRegistry builds every provider that has credentials configured.
func newProviderRegistry(ctx context.Context, c config.Config) (*identity.Registry, error) {
	var providers []identity.Provider

	if tw := c.GetTwitter(); tw.Enabled() {
		p, err := twitter.New(twitter.Config{
			ConsumerKey:     tw.ConsumerKey,
			ConsumerSecret:  tw.ConsumerSecret,
			CallbackURL:     tw.CallbackURL,
			RequestTokenURL: tw.RequestTokenURL,
			AuthorizeURL:    tw.AuthorizeURL,
			AccessTokenURL:  tw.AccessTokenURL,
			VerifyURL:       tw.VerifyURL,
			Timeout:         tw.Timeout,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if oc := c.GetOIDC(); oc.Enabled() {
		// ctx outlives discovery: the provider fetches rotated signing keys with it
		p, err := openid.New(ctx, openid.Config{
			Name:         "oidc",
			Issuer:       oc.Issuer,
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			RedirectURL:  oc.RedirectURL,
			Scopes:       oc.Scopes,
			Timeout:      oc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		log.Warn().Msg("No identity providers configured; every sign-in route will return 404")
	}
	return identity.NewRegistry(providers...), nil
}
