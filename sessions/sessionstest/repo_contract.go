// Package sessionstest holds the behaviour every sessions.Repo must share.
package sessionstest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-server/identity"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/stretchr/testify/require"
)

// RunRepoContract exercises a Repo built fresh by newRepo for each subtest.
func RunRepoContract(t *testing.T, newRepo func(t *testing.T) sessions.Repo) {
	ctx := context.Background()
	later := time.Now().Add(time.Hour)

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		repo := newRepo(t)
		pendingSince := time.Now().UTC().Truncate(time.Millisecond)
		rec := sessions.Record{}.WithTokenSecret("abc", pendingSince)
		require.NoError(t, repo.Put(ctx, "s1", rec, later))

		got, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, rec.TokenSecret, got.TokenSecret)
		require.True(t, rec.PendingSince.Equal(got.PendingSince))
		require.Nil(t, got.User)
		require.Equal(t, sessions.StatePending, got.State())
	})

	t.Run("put replaces", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, "s1", sessions.Record{}.WithTokenSecret("abc", time.Now()), later))
		user := sessions.Record{}.WithUser(identity.UserIdentity{ID: "42", Name: "dc", Provider: "twitter"})
		require.NoError(t, repo.Put(ctx, "s1", user, later))

		got, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, sessions.StateAuthenticated, got.State())
		require.Empty(t, got.TokenSecret)
		require.Equal(t, "dc", got.DisplayName())
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, "s1", sessions.Record{}.WithTokenSecret("abc", time.Now()), later))
		require.NoError(t, repo.Delete(ctx, "s1"))
		require.NoError(t, repo.Delete(ctx, "s1"))

		_, err := repo.Get(ctx, "s1")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("expired sessions are not returned", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, "old", sessions.Record{}.WithTokenSecret("abc", time.Now()), time.Now().Add(-time.Minute)))

		_, err := repo.Get(ctx, "old")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now()
		require.NoError(t, repo.Put(ctx, "old", sessions.Record{}.WithTokenSecret("abc", now), now.Add(-time.Minute)))
		require.NoError(t, repo.Put(ctx, "fresh", sessions.Record{}.WithTokenSecret("def", now), now.Add(time.Hour)))

		removed, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, 1, removed)

		_, err = repo.Get(ctx, "fresh")
		require.NoError(t, err)
	})

	t.Run("concurrent writers to one session", func(t *testing.T) {
		repo := newRepo(t)
		var wg sync.WaitGroup
		for _, name := range []string{"a", "b", "c", "d"} {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				rec := sessions.Record{}.WithUser(identity.UserIdentity{ID: name, Name: name})
				_ = repo.Put(ctx, "shared", rec, later)
			}(name)
		}
		wg.Wait()

		got, err := repo.Get(ctx, "shared")
		require.NoError(t, err)
		require.Equal(t, sessions.StateAuthenticated, got.State())
	})
}
