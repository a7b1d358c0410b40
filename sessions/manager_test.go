package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/stretchr/testify/require"
)

type managerFixture struct {
	repo    *sessions.InMemoryRepo
	codec   *sessions.CookieCodec
	manager *sessions.Manager
	now     time.Time
}

func setupManager(t *testing.T, pendingTTL time.Duration) *managerFixture {
	t.Helper()

	codec, err := sessions.NewCookieCodec("cookie-secret")
	require.NoError(t, err)

	f := &managerFixture{
		repo:  sessions.NewInMemoryRepo(),
		codec: codec,
		now:   time.Now(),
	}
	f.manager = sessions.NewManager(f.repo, codec, sessions.ManagerConfig{
		MaxAge:     30 * 24 * time.Hour,
		PendingTTL: pendingTTL,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func (f *managerFixture) cookieFor(t *testing.T, s sessions.Session) string {
	t.Helper()
	value, err := f.manager.CookieValue(s)
	require.NoError(t, err)
	return value
}

func TestLoadWithoutCookieIsNew(t *testing.T) {
	f := setupManager(t, 0)

	s, err := f.manager.Load(context.Background(), "")
	require.NoError(t, err)
	require.True(t, s.IsNew)
	require.NotEmpty(t, s.ID)
	require.True(t, s.Record.IsEmpty())
}

func TestNewEmptySessionIsNotPersisted(t *testing.T) {
	f := setupManager(t, 0)
	s, err := f.manager.Load(context.Background(), "")
	require.NoError(t, err)

	outcome, err := f.manager.Save(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, sessions.SaveSkipped, outcome)
	require.Zero(t, f.repo.Len())
}

func TestSaveAndReload(t *testing.T) {
	f := setupManager(t, 0)
	ctx := context.Background()

	s, err := f.manager.Load(ctx, "")
	require.NoError(t, err)
	s.Record = s.Record.WithTokenSecret("abc", f.now)

	outcome, err := f.manager.Save(ctx, s)
	require.NoError(t, err)
	require.Equal(t, sessions.SavePersisted, outcome)

	loaded, err := f.manager.Load(ctx, f.cookieFor(t, s))
	require.NoError(t, err)
	require.False(t, loaded.IsNew)
	require.Equal(t, s.ID, loaded.ID)
	require.Equal(t, "abc", loaded.Record.TokenSecret)
}

func TestLoadForgedCookieStartsFresh(t *testing.T) {
	f := setupManager(t, 0)
	ctx := context.Background()
	require.NoError(t, f.repo.Put(ctx, "known", sessions.Record{}.WithUser(identity.UserIdentity{ID: "42"}), f.now.Add(time.Hour)))

	other, err := sessions.NewCookieCodec("another-secret")
	require.NoError(t, err)
	forged, err := other.Encode("known", f.now)
	require.NoError(t, err)

	s, err := f.manager.Load(ctx, forged)
	require.NoError(t, err)
	require.True(t, s.IsNew)
	require.NotEqual(t, "known", s.ID)
	require.False(t, s.Record.Authenticated())
}

func TestLoadUnknownSessionStartsFresh(t *testing.T) {
	f := setupManager(t, 0)

	s, err := f.manager.Load(context.Background(), f.cookieFor(t, sessions.Session{ID: "gone"}))
	require.NoError(t, err)
	require.True(t, s.IsNew)
	require.NotEqual(t, "gone", s.ID)
}

func TestStaleTokenSecretIsDropped(t *testing.T) {
	f := setupManager(t, 15*time.Minute)
	ctx := context.Background()
	s := sessions.Session{ID: "s1", Record: sessions.Record{}.WithTokenSecret("abc", f.now)}
	_, err := f.manager.Save(ctx, s)
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Minute)
	loaded, err := f.manager.Load(ctx, f.cookieFor(t, s))
	require.NoError(t, err)
	require.Equal(t, "abc", loaded.Record.TokenSecret)

	f.now = f.now.Add(10 * time.Minute)
	loaded, err = f.manager.Load(ctx, f.cookieFor(t, s))
	require.NoError(t, err)
	require.Equal(t, sessions.StateAnonymous, loaded.Record.State())

	outcome, err := f.manager.Save(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, sessions.SaveDeleted, outcome)
	_, err = f.repo.Get(ctx, "s1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestPendingTTLDisabled(t *testing.T) {
	f := setupManager(t, 0)
	ctx := context.Background()
	s := sessions.Session{ID: "s1", Record: sessions.Record{}.WithTokenSecret("abc", f.now)}
	_, err := f.manager.Save(ctx, s)
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	loaded, err := f.manager.Load(ctx, f.cookieFor(t, s))
	require.NoError(t, err)
	require.Equal(t, "abc", loaded.Record.TokenSecret)
}

func TestSaveSignedOutSessionDeletesIt(t *testing.T) {
	f := setupManager(t, 0)
	ctx := context.Background()
	s := sessions.Session{ID: "s1", Record: sessions.Record{}.WithUser(identity.UserIdentity{ID: "42", Name: "dc"})}
	_, err := f.manager.Save(ctx, s)
	require.NoError(t, err)

	s.Record = s.Record.WithoutUser()
	outcome, err := f.manager.Save(ctx, s)
	require.NoError(t, err)
	require.Equal(t, sessions.SaveDeleted, outcome)
	require.Zero(t, f.repo.Len())
}

func TestCookieCodec(t *testing.T) {
	_, err := sessions.NewCookieCodec("")
	require.Error(t, err)

	codec, err := sessions.NewCookieCodec("cookie-secret")
	require.NoError(t, err)

	value, err := codec.Encode("session-1", time.Now())
	require.NoError(t, err)
	id, err := codec.Decode(value)
	require.NoError(t, err)
	require.Equal(t, "session-1", id)

	_, err = codec.Decode("session-1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCookie)
	_, err = codec.Decode(value + "x")
	require.ErrorIs(t, err, apperrors.ErrInvalidCookie)
}

func TestRunReaper(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, repo.Put(ctx, "old", sessions.Record{}.WithTokenSecret("abc", time.Now()), time.Now().Add(-time.Second)))

	done := make(chan error, 1)
	go func() { done <- sessions.RunReaper(ctx, repo, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
