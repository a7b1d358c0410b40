package authflow_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-server/authflow"
	"github.com/jrsteele09/go-signin-server/identity"
	"github.com/jrsteele09/go-signin-server/identity/identityfakes"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/stretchr/testify/require"
)

const (
	testProvider    = "twitter"
	testTokenSecret = "abc"
	testRedirectURL = "https://provider.example.com/oauth/authenticate?oauth_token=req-token"
	testPublicToken = "req-token"
	testVerifier    = "good-verifier"
)

var testUser = identity.UserIdentity{ID: "42", Name: "dc", Provider: testProvider}

type testFixture struct {
	provider   *identityfakes.FakeProvider
	controller *authflow.Controller
	now        time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	p := identityfakes.NewFakeProvider(testProvider, testTokenSecret, testRedirectURL)
	p.Accept(identityfakes.Exchange{PublicToken: testPublicToken, Verifier: testVerifier, TokenSecret: testTokenSecret}, testUser)

	f := &testFixture{provider: p, now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	f.controller = authflow.New(p).WithClock(func() time.Time { return f.now })
	return f
}

func authenticatedRecord() sessions.Record {
	return sessions.Record{}.WithUser(testUser)
}

func TestInitiateFreshSession(t *testing.T) {
	f := setupTestFixture(t)

	rec, result, err := f.controller.Initiate(context.Background(), sessions.Record{})
	require.NoError(t, err)
	require.Equal(t, authflow.RedirectProvider, result.Outcome)
	require.Equal(t, testRedirectURL, result.RedirectURL)
	require.Equal(t, testTokenSecret, rec.TokenSecret)
	require.Equal(t, f.now, rec.PendingSince)
	require.Nil(t, rec.User)
	require.Equal(t, sessions.StatePending, rec.State())
}

func TestInitiateWhileAuthenticated(t *testing.T) {
	f := setupTestFixture(t)
	start := authenticatedRecord()

	rec, result, err := f.controller.Initiate(context.Background(), start)
	require.NoError(t, err)
	require.Equal(t, authflow.AlreadyAuthenticated, result.Outcome)
	require.Empty(t, result.RedirectURL)
	require.Equal(t, start, rec)
	require.Empty(t, rec.TokenSecret)
	require.Zero(t, f.provider.InitiateCalls())
}

func TestInitiateProviderFailureLeavesSessionAlone(t *testing.T) {
	f := setupTestFixture(t)
	providerErr := apperrors.WithStatus(apperrors.ErrProviderUnavailable, http.StatusBadGateway)
	f.provider.InitiateErr = providerErr

	rec, _, err := f.controller.Initiate(context.Background(), sessions.Record{})
	require.Same(t, providerErr, err)
	require.True(t, rec.IsEmpty())
}

func TestInitiateTwiceReplacesSecret(t *testing.T) {
	f := setupTestFixture(t)

	rec, _, err := f.controller.Initiate(context.Background(), sessions.Record{})
	require.NoError(t, err)

	f.provider.TokenSecret = "second"
	rec, _, err = f.controller.Initiate(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, "second", rec.TokenSecret)
}

func TestCallbackSuccess(t *testing.T) {
	f := setupTestFixture(t)
	start := sessions.Record{}.WithTokenSecret(testTokenSecret, f.now)

	rec, result, err := f.controller.Callback(context.Background(), start, testPublicToken, testVerifier)
	require.NoError(t, err)
	require.Equal(t, authflow.RedirectHome, result.Outcome)
	require.Equal(t, &identity.UserIdentity{ID: "42", Name: "dc", Provider: testProvider}, rec.User)
	require.Empty(t, rec.TokenSecret)
	require.Equal(t, sessions.StateAuthenticated, rec.State())
}

func TestCallbackRejectedVerifier(t *testing.T) {
	f := setupTestFixture(t)
	start := sessions.Record{}.WithTokenSecret(testTokenSecret, f.now)

	rec, _, err := f.controller.Callback(context.Background(), start, testPublicToken, "forged")
	require.ErrorIs(t, err, apperrors.ErrProviderRejected)
	require.Equal(t, start, rec)
	require.Equal(t, testTokenSecret, rec.TokenSecret)
	require.Nil(t, rec.User)
}

func TestCallbackWithoutTokenSecret(t *testing.T) {
	f := setupTestFixture(t)

	rec, _, err := f.controller.Callback(context.Background(), sessions.Record{}, testPublicToken, testVerifier)
	require.ErrorIs(t, err, apperrors.ErrMissingTokenSecret)
	require.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
	require.Nil(t, rec.User)
	require.Zero(t, f.provider.ExchangeCalls(), "provider is never asked to verify without a secret")
}

func TestCallbackSecretFromAnotherHandshake(t *testing.T) {
	f := setupTestFixture(t)
	start := sessions.Record{}.WithTokenSecret("not-the-secret-for-this-token", f.now)

	rec, _, err := f.controller.Callback(context.Background(), start, testPublicToken, testVerifier)
	require.Error(t, err)
	require.Nil(t, rec.User)
	require.Equal(t, start, rec)
}

func TestCallbackMissingParams(t *testing.T) {
	f := setupTestFixture(t)
	start := sessions.Record{}.WithTokenSecret(testTokenSecret, f.now)

	for _, tc := range []struct{ token, verifier string }{
		{"", testVerifier},
		{testPublicToken, ""},
	} {
		rec, _, err := f.controller.Callback(context.Background(), start, tc.token, tc.verifier)
		require.ErrorIs(t, err, apperrors.ErrMissingCallbackParams)
		require.Equal(t, start, rec)
	}
	require.Zero(t, f.provider.ExchangeCalls())
}

func TestCallbackProviderErrorIsPropagatedUnchanged(t *testing.T) {
	f := setupTestFixture(t)
	providerErr := errors.New("connection reset")
	f.provider.ExchangeErr = providerErr

	_, _, err := f.controller.Callback(context.Background(), sessions.Record{}.WithTokenSecret(testTokenSecret, f.now), testPublicToken, testVerifier)
	require.Same(t, providerErr, err)
}

func TestCallbackWhileAuthenticated(t *testing.T) {
	f := setupTestFixture(t)
	start := authenticatedRecord()

	rec, result, err := f.controller.Callback(context.Background(), start, "other-token", "other-verifier")
	require.NoError(t, err)
	require.Equal(t, authflow.AlreadyAuthenticated, result.Outcome)
	require.Equal(t, start, rec)
	require.Zero(t, f.provider.ExchangeCalls())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)

	rec, result := f.controller.Logout(context.Background(), authenticatedRecord())
	require.Equal(t, authflow.RedirectHome, result.Outcome)
	require.Nil(t, rec.User)
	require.Equal(t, "", rec.DisplayName())
	require.Equal(t, sessions.StateAnonymous, rec.State())
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)

	first, firstResult := f.controller.Logout(context.Background(), authenticatedRecord())
	second, secondResult := f.controller.Logout(context.Background(), first)
	require.Equal(t, firstResult, secondResult)
	require.Equal(t, first, second)

	anon, anonResult := f.controller.Logout(context.Background(), sessions.Record{})
	require.Equal(t, firstResult, anonResult)
	require.True(t, anon.IsEmpty())
}

func TestLogoutDropsPendingHandshake(t *testing.T) {
	f := setupTestFixture(t)

	rec, _ := f.controller.Logout(context.Background(), sessions.Record{}.WithTokenSecret(testTokenSecret, f.now))
	require.True(t, rec.IsEmpty())
}

// The user is present exactly when an exchange has succeeded since the last
// logout, whatever order the transitions arrive in.
func TestAuthenticatedOnlyAfterSuccessfulExchange(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	type step struct {
		name string
		run  func(sessions.Record) sessions.Record
	}
	initiate := step{"initiate", func(r sessions.Record) sessions.Record {
		r, _, _ = f.controller.Initiate(ctx, r)
		return r
	}}
	goodCallback := step{"good callback", func(r sessions.Record) sessions.Record {
		r, _, _ = f.controller.Callback(ctx, r, testPublicToken, testVerifier)
		return r
	}}
	badCallback := step{"bad callback", func(r sessions.Record) sessions.Record {
		r, _, _ = f.controller.Callback(ctx, r, testPublicToken, "forged")
		return r
	}}
	logout := step{"logout", func(r sessions.Record) sessions.Record {
		r, _ = f.controller.Logout(ctx, r)
		return r
	}}

	sequences := [][]step{
		{goodCallback},
		{badCallback, goodCallback},
		{initiate, badCallback},
		{initiate, goodCallback},
		{initiate, goodCallback, initiate},
		{initiate, goodCallback, logout, goodCallback},
		{initiate, initiate, goodCallback, goodCallback},
		{logout, initiate, logout, goodCallback},
	}

	for _, seq := range sequences {
		var rec sessions.Record
		exchanged := false
		for _, s := range seq {
			before := rec
			rec = s.run(rec)
			switch {
			case s.name == "logout":
				exchanged = false
			case s.name == "good callback" && before.State() == sessions.StatePending:
				exchanged = true
			}
			require.Equal(t, exchanged, rec.Authenticated(), "after %s", s.name)
		}
	}
}
