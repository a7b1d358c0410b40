package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusOfDefaultsToInternalServerError(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, apperrors.StatusOf(fmt.Errorf("boom")))
}

func TestStatusOfFindsWrappedStatus(t *testing.T) {
	err := apperrors.WithStatus(apperrors.ErrMissingTokenSecret, http.StatusBadRequest)
	wrapped := apperrors.Wrapf(err, "callback for %s", "twitter")

	require.Equal(t, http.StatusBadRequest, apperrors.StatusOf(wrapped))
	require.True(t, apperrors.Is(wrapped, apperrors.ErrMissingTokenSecret))
	require.Equal(t, "callback for twitter: no token secret in session", wrapped.Error())
}

func TestWithStatusNil(t *testing.T) {
	require.NoError(t, apperrors.WithStatus(nil, http.StatusBadRequest))
	require.NoError(t, apperrors.Wrapf(nil, "ignored"))
}
