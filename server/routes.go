package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("GET "+RouteAuthInitiate, s.InitiateHandler())
	s.RegisterRouteFunc("GET "+RouteAuthCallback, s.CallbackHandler())
	s.RegisterRouteFunc("GET "+RouteAuthLogout, s.LogoutHandler())

	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.RequireAuthenticated()))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc(RouteNotFound, s.NotFoundHandler())
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, apperrors.WithStatus(apperrors.ErrNotFound, http.StatusNotFound))
	}
}
