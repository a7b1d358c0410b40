package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := config.NewFromMap(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "/", c.GetHomePath())
	require.True(t, c.GetTrustProxy())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.Equal(t, 30*24*time.Hour, c.GetSessionMaxAge())
	require.Equal(t, 15*time.Minute, c.GetSessionPendingTTL())
	require.False(t, c.GetTwitter().Enabled())
	require.False(t, c.GetOIDC().Enabled())
	require.Equal(t, 10*time.Second, c.GetTwitter().Timeout)
}

func TestProviderSettings(t *testing.T) {
	c, err := config.NewFromMap(map[string]string{
		"PORT":                    ":9000",
		"BASE_URL":                "https://signals.example.com/",
		"TRUST_PROXY":             "false",
		"SESSION_PENDING_TTL":     "0s",
		"TWITTER_CONSUMER_KEY":    "key",
		"TWITTER_CONSUMER_SECRET": "secret",
		"OIDC_ISSUER":             "https://id.example.com",
		"OIDC_CLIENT_ID":          "signals",
		"OIDC_SCOPES":             "openid,,profile",
		"PROVIDER_TIMEOUT":        "3s",
	})
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.False(t, c.GetTrustProxy())
	require.Zero(t, c.GetSessionPendingTTL())

	tw := c.GetTwitter()
	require.True(t, tw.Enabled())
	require.Equal(t, "https://signals.example.com/auth/twitter/callback", tw.CallbackURL)
	require.Equal(t, 3*time.Second, tw.Timeout)

	oidc := c.GetOIDC()
	require.True(t, oidc.Enabled())
	require.Equal(t, "https://signals.example.com/auth/oidc/callback", oidc.RedirectURL)
	require.Equal(t, []string{"openid", "profile"}, oidc.Scopes)
	require.Equal(t, 3*time.Second, oidc.Timeout)
}

func TestInvalidDuration(t *testing.T) {
	_, err := config.NewFromMap(map[string]string{"SESSION_MAX_AGE": "forever"})
	require.Error(t, err)
}
