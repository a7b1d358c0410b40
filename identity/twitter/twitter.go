// Package twitter signs users in with Twitter's OAuth1.0a three-legged flow.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dghubble/oauth1"
	oauth1twitter "github.com/dghubble/oauth1/twitter"
	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
)

const (
	Name = "twitter"

	defaultVerifyURL = "https://api.twitter.com/1.1/account/verify_credentials.json"
	defaultTimeout   = 10 * time.Second
)

var _ identity.Provider = (*Provider)(nil)

// Config holds the consumer credentials and endpoints. Empty endpoint fields
// use Twitter's "Sign in with Twitter" endpoints.
type Config struct {
	ConsumerKey     string
	ConsumerSecret  string
	CallbackURL     string
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	VerifyURL       string
	// Timeout bounds each call to Twitter. Zero means 10s.
	Timeout time.Duration
}

type Provider struct {
	oauthConfig *oauth1.Config
	verifyURL   string
	timeout     time.Duration
}

func New(cfg Config) (*Provider, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errors.New("[twitter New] consumer key and secret are required")
	}
	if cfg.CallbackURL == "" {
		return nil, errors.New("[twitter New] callback URL is required")
	}

	endpoint := oauth1twitter.AuthenticateEndpoint
	if cfg.RequestTokenURL != "" {
		endpoint.RequestTokenURL = cfg.RequestTokenURL
	}
	if cfg.AuthorizeURL != "" {
		endpoint.AuthorizeURL = cfg.AuthorizeURL
	}
	if cfg.AccessTokenURL != "" {
		endpoint.AccessTokenURL = cfg.AccessTokenURL
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		oauthConfig: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint:       endpoint,
		},
		verifyURL: verifyURL,
		timeout:   timeout,
	}, nil
}

func (p *Provider) Name() string {
	return Name
}

// Initiate obtains a request token. The request token travels to the user in
// the authorize URL; its secret is returned for the session to keep.
func (p *Provider) Initiate(ctx context.Context) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	requestToken, requestSecret, err := p.configFor(ctx).RequestToken()
	if err != nil {
		return "", "", unavailable(fmt.Errorf("%w: request token: %w", apperrors.ErrProviderUnavailable, err))
	}
	authorizeURL, err := p.oauthConfig.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", unavailable(fmt.Errorf("%w: authorization url: %w", apperrors.ErrProviderUnavailable, err))
	}
	return requestSecret, authorizeURL.String(), nil
}

// Exchange trades the verified request token for an access token and reads
// the account behind it.
func (p *Provider) Exchange(ctx context.Context, requestToken, verifier, requestSecret string) (identity.UserIdentity, error) {
	if requestSecret == "" {
		return identity.UserIdentity{}, apperrors.WithStatus(apperrors.ErrMissingTokenSecret, http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	accessToken, accessSecret, err := p.configFor(ctx).AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		var transportErr *url.Error
		if ctx.Err() != nil || errors.As(err, &transportErr) {
			return identity.UserIdentity{}, unavailable(fmt.Errorf("%w: access token: %w", apperrors.ErrProviderUnavailable, err))
		}
		return identity.UserIdentity{}, rejected(fmt.Errorf("%w: access token: %w", apperrors.ErrProviderRejected, err))
	}

	account, err := p.verifyCredentials(ctx, oauth1.NewToken(accessToken, accessSecret))
	if err != nil {
		return identity.UserIdentity{}, err
	}
	return identity.UserIdentity{
		ID:       account.ID,
		Name:     account.ScreenName,
		Provider: Name,
	}, nil
}

func (p *Provider) CallbackParams(query url.Values) (string, string) {
	return query.Get("oauth_token"), query.Get("oauth_verifier")
}

// configFor returns a copy of the OAuth1 config whose token requests run
// under ctx. The library's RequestToken and AccessToken take no context.
func (p *Provider) configFor(ctx context.Context) *oauth1.Config {
	cfg := *p.oauthConfig
	cfg.HTTPClient = &http.Client{Transport: contextTransport{ctx: ctx, base: http.DefaultTransport}}
	return &cfg
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

type account struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

func (p *Provider) verifyCredentials(ctx context.Context, token *oauth1.Token) (account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.verifyURL, nil)
	if err != nil {
		return account{}, fmt.Errorf("[twitter verifyCredentials] %w", err)
	}

	resp, err := p.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return account{}, unavailable(fmt.Errorf("%w: verify credentials: %w", apperrors.ErrProviderUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return account{}, rejected(fmt.Errorf("%w: verify credentials: status %d", apperrors.ErrProviderRejected, resp.StatusCode))
	}

	var acc account
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return account{}, unavailable(fmt.Errorf("%w: decode account: %w", apperrors.ErrProviderUnavailable, err))
	}
	if acc.ID == "" {
		return account{}, rejected(fmt.Errorf("%w: account has no id", apperrors.ErrProviderRejected))
	}
	return acc, nil
}

func unavailable(err error) error {
	return apperrors.WithStatus(err, http.StatusBadGateway)
}

func rejected(err error) error {
	return apperrors.WithStatus(err, http.StatusUnauthorized)
}
