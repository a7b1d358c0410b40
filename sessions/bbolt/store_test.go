package bbolt_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/jrsteele09/go-signin-server/sessions/bbolt"
	"github.com/jrsteele09/go-signin-server/sessions/sessionstest"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	sessionstest.RunRepoContract(t, func(t *testing.T) sessions.Repo {
		store, err := bbolt.Open(filepath.Join(t.TempDir(), "sessions.bolt"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := bbolt.Open("")
	require.Error(t, err)
}
