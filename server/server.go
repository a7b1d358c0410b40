package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-signin-server/identity"
	"github.com/jrsteele09/go-signin-server/internal/config"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	trustProxy bool
	homePath   string
	mux        *http.ServeMux
	handler    http.HandlerFunc
	routes     []string
	providers  *identity.Registry
	sessions   *sessions.Manager
}

func New(config config.Config, providers *identity.Registry, sessionManager *sessions.Manager) *Server {
	s := &Server{
		env:        config.GetEnv(),
		trustProxy: config.GetTrustProxy(),
		homePath:   config.GetHomePath(),
		mux:        http.NewServeMux(),
		providers:  providers,
		sessions:   sessionManager,
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.StandardMiddleware()...)
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
	log.Info().Strs("providers", s.providers.Names()).Msg("Identity providers")
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
