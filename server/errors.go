package server

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/rs/zerolog/log"
)

var errNoRequestState = apperrors.Wrapf(apperrors.ErrInternal, "request state missing")

// renderError is the single place a failed request turns into a response.
// The status comes from the error (see errors.StatusOf); the body is a
// one-line summary.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.StatusOf(err)

	event := log.Ctx(r.Context()).Warn()
	if code >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", code).Str("path", r.URL.Path).Msg("Request failed")

	msg := fmt.Sprintf("%d: %s", code, http.StatusText(code))
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		msg = fmt.Sprintf("%s (%s)", msg, err.Error())
	}
	http.Error(w, msg, code)
}
