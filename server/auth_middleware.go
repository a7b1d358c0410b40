package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/rs/zerolog/log"
)

var errNotSignedIn = apperrors.WithStatus(apperrors.Wrapf(apperrors.ErrSessionNotFound, "not signed in"), http.StatusUnauthorized)

// RequireAuthenticated only lets requests from a signed-in session through.
// It must run behind SessionMiddleware.
func (s *Server) RequireAuthenticated() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentUser(r); !ok {
				s.renderError(w, r, errNotSignedIn)
				return
			}
			next(w, r)
		}
	}
}

// MeHandler returns the signed-in user as JSON.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := CurrentUser(r)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(user); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write user")
		}
	}
}
