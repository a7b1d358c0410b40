package config

import (
	"strings"
	"time"
)

// envValues holds the raw environment values.
type envValues struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	AppName  string `env:"APP_NAME"  envDefault:"Go Signin Server"`
	Env      string `env:"ENV"       envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL  string `env:"BASE_URL"  envDefault:"http://localhost:8080"`
	HomePath string `env:"HOME_PATH" envDefault:"/"`

	TrustProxy   bool   `env:"TRUST_PROXY"   envDefault:"true"`
	CookieSecret string `env:"COOKIE_SECRET"`

	SessionStore        string        `env:"SESSION_STORE"         envDefault:"memory"`
	SessionDSN          string        `env:"SESSION_DSN"           envDefault:"./data/sessions.db"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE"       envDefault:"720h"`
	SessionPendingTTL   time.Duration `env:"SESSION_PENDING_TTL"   envDefault:"15m"`
	SessionReapInterval time.Duration `env:"SESSION_REAP_INTERVAL" envDefault:"10m"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	TwitterConsumerKey     string `env:"TWITTER_CONSUMER_KEY"`
	TwitterConsumerSecret  string `env:"TWITTER_CONSUMER_SECRET"`
	TwitterRequestTokenURL string `env:"TWITTER_REQUEST_TOKEN_URL"`
	TwitterAuthorizeURL    string `env:"TWITTER_AUTHORIZE_URL"`
	TwitterAccessTokenURL  string `env:"TWITTER_ACCESS_TOKEN_URL"`
	TwitterVerifyURL       string `env:"TWITTER_VERIFY_URL"`

	OIDCIssuer       string   `env:"OIDC_ISSUER"`
	OIDCClientID     string   `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	OIDCScopes       []string `env:"OIDC_SCOPES" envSeparator:","`
}

func (c mainConfig) GetPort() string {
	port := c.values.Port
	if port != "" && port[0] != ':' {
		port = ":" + port
	}
	return port
}

func (c mainConfig) GetAppName() string {
	return c.values.AppName
}

func (c mainConfig) GetEnv() string {
	return c.values.Env
}

func (c mainConfig) GetLogLevel() string {
	return c.values.LogLevel
}

// GetBaseURL returns the public origin of the server (e.g. "https://signals.example.com").
// Provider callback URLs are built from it.
func (c mainConfig) GetBaseURL() string {
	return strings.TrimRight(c.values.BaseURL, "/")
}

// GetHomePath is where clients are sent after a completed, skipped or
// abandoned handshake.
func (c mainConfig) GetHomePath() string {
	return c.values.HomePath
}
