package config

import "time"

type ProviderConfig interface {
	GetTwitter() TwitterSettings
	GetOIDC() OIDCSettings
}

// TwitterSettings configures the OAuth1.0a provider. Empty endpoint URLs fall
// back to the provider's public endpoints.
type TwitterSettings struct {
	ConsumerKey     string
	ConsumerSecret  string
	CallbackURL     string
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	VerifyURL       string
	Timeout         time.Duration
}

func (s TwitterSettings) Enabled() bool {
	return s.ConsumerKey != "" && s.ConsumerSecret != ""
}

type OIDCSettings struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	Timeout      time.Duration
}

func (s OIDCSettings) Enabled() bool {
	return s.Issuer != "" && s.ClientID != ""
}

func (c mainConfig) GetTwitter() TwitterSettings {
	return TwitterSettings{
		ConsumerKey:     c.values.TwitterConsumerKey,
		ConsumerSecret:  c.values.TwitterConsumerSecret,
		CallbackURL:     c.GetBaseURL() + "/auth/twitter/callback",
		RequestTokenURL: c.values.TwitterRequestTokenURL,
		AuthorizeURL:    c.values.TwitterAuthorizeURL,
		AccessTokenURL:  c.values.TwitterAccessTokenURL,
		VerifyURL:       c.values.TwitterVerifyURL,
		Timeout:         c.values.ProviderTimeout,
	}
}

func (c mainConfig) GetOIDC() OIDCSettings {
	scopes := make([]string, 0, len(c.values.OIDCScopes))
	for _, s := range c.values.OIDCScopes {
		if s != "" {
			scopes = append(scopes, s)
		}
	}
	return OIDCSettings{
		Issuer:       c.values.OIDCIssuer,
		ClientID:     c.values.OIDCClientID,
		ClientSecret: c.values.OIDCClientSecret,
		RedirectURL:  c.GetBaseURL() + "/auth/oidc/callback",
		Scopes:       scopes,
		Timeout:      c.values.ProviderTimeout,
	}
}
