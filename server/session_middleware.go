package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"github.com/jrsteele09/go-signin-server/sessions"
)

// SessionMiddleware loads the session named by the request's cookie into the
// request state and saves it back before the response headers go out.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := StateFrom(r.Context())
		if !ok {
			next(w, r)
			return
		}

		var cookieValue string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			cookieValue = c.Value
		}

		session, err := s.sessions.Load(r.Context(), cookieValue)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		state.Session = session
		storeState(r.Context(), state)

		sw := &sessionWriter{ResponseWriter: w, commit: func() error {
			return s.commitSession(w, r)
		}, fail: func(err error) {
			// Drop whatever the handler staged for its own response
			w.Header().Del("Location")
			s.renderError(w, r, err)
		}}
		next(sw, r)
		sw.ensureCommitted()
	}
}

// commitSession saves the request's session and sets the cookies. It runs at
// most once per request; later calls are no-ops.
func (s *Server) commitSession(w http.ResponseWriter, r *http.Request) error {
	scope := scopeFrom(r.Context())
	if scope == nil || scope.committed {
		return nil
	}
	scope.committed = true

	state := scope.state
	secure := state.Scheme == "https"

	outcome, err := s.sessions.Save(r.Context(), state.Session)
	if err != nil {
		return apperrors.Wrapf(err, "save session")
	}

	switch outcome {
	case sessions.SavePersisted:
		value, err := s.sessions.CookieValue(state.Session)
		if err != nil {
			return err
		}
		s.setSessionCookie(w, value, secure, s.sessions.MaxAge())
	case sessions.SaveDeleted:
		s.clearSessionCookie(w, secure)
	}
	s.setUserNameCookie(w, state.Session.Record.DisplayName(), secure)
	return nil
}

// sessionWriter commits the session just before the first header write. If
// the save fails the handler's response is replaced by the error response
// and its later writes are discarded.
type sessionWriter struct {
	http.ResponseWriter
	commit    func() error
	fail      func(error)
	committed bool
	failed    bool
}

func (w *sessionWriter) ensureCommitted() {
	if w.committed {
		return
	}
	w.committed = true
	if err := w.commit(); err != nil {
		w.failed = true
		w.fail(err)
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.ensureCommitted()
	if w.failed {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.ensureCommitted()
	if w.failed {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
