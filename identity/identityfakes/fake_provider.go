package identityfakes

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
)

var _ identity.Provider = (*FakeProvider)(nil)

// Exchange is the triple a fake provider accepts on callback.
type Exchange struct {
	PublicToken string
	Verifier    string
	TokenSecret string
}

// FakeProvider is an in-memory identity provider for tests. It hands out a
// fixed token secret and accepts only the exchanges registered with Accept.
type FakeProvider struct {
	ProviderName string
	TokenSecret  string
	RedirectURL  string
	InitiateErr  error
	ExchangeErr  error

	mu            sync.Mutex
	accepted      map[Exchange]identity.UserIdentity
	initiateCalls int
	exchangeCalls int
}

func NewFakeProvider(name, tokenSecret, redirectURL string) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		TokenSecret:  tokenSecret,
		RedirectURL:  redirectURL,
		accepted:     make(map[Exchange]identity.UserIdentity),
	}
}

// Accept registers a successful exchange.
func (f *FakeProvider) Accept(ex Exchange, user identity.UserIdentity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted[ex] = user
}

func (f *FakeProvider) Name() string {
	return f.ProviderName
}

func (f *FakeProvider) Initiate(ctx context.Context) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiateCalls++
	if f.InitiateErr != nil {
		return "", "", f.InitiateErr
	}
	return f.TokenSecret, f.RedirectURL, nil
}

func (f *FakeProvider) Exchange(ctx context.Context, publicToken, verifier, tokenSecret string) (identity.UserIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	if f.ExchangeErr != nil {
		return identity.UserIdentity{}, f.ExchangeErr
	}
	user, ok := f.accepted[Exchange{PublicToken: publicToken, Verifier: verifier, TokenSecret: tokenSecret}]
	if !ok {
		return identity.UserIdentity{}, apperrors.WithStatus(apperrors.ErrProviderRejected, http.StatusUnauthorized)
	}
	return user, nil
}

func (f *FakeProvider) CallbackParams(query url.Values) (string, string) {
	return query.Get("oauth_token"), query.Get("oauth_verifier")
}

func (f *FakeProvider) InitiateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initiateCalls
}

func (f *FakeProvider) ExchangeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls
}
