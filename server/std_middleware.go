package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/rs/zerolog/log"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

// StandardMiddleware runs in front of every route, outermost first.
func (s *Server) StandardMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.RequestIDMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.SecurityHeadersMiddleware,
		s.ProxyTrustMiddleware,
		s.SessionMiddleware,
	}
	chainedMiddleWare = append(chainedMiddleWare, mw...)
	return chainedMiddleWare
}

// RequestIDMiddleware installs the request state and a request-scoped logger.
func (s *Server) RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := log.With().Str("request_id", requestID).Logger()

		ctx := logger.WithContext(r.Context())
		ctx = withRequestState(ctx, RequestState{RequestID: requestID})

		w.Header().Set("X-Request-Id", requestID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		state, _ := StateFrom(r.Context())
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("client", state.ClientAddr).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Ctx(r.Context()).Error().Interface("panic", rec).Msg("Recovered from panic")
				s.renderError(w, r, apperrors.ErrInternal)
			}
		}()
		next(w, r)
	}
}

// SecurityHeadersMiddleware sets the anti-sniffing, anti-framing and XSS
// filter headers on every response. It never short-circuits.
func (s *Server) SecurityHeadersMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		// Stop browsers MIME-sniffing responses into something executable
		h.Set("X-Content-Type-Options", "nosniff")
		// Never render inside a frame
		h.Set("X-Frame-Options", "DENY")
		// Re-enable the browser XSS filter in case the user switched it off
		h.Set("X-XSS-Protection", "1; mode=block")
		next(w, r)
	}
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
