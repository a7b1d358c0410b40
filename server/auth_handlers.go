package server

import (
	"net/http"

	"github.com/jrsteele09/go-signin-server/authflow"
	"github.com/jrsteele09/go-signin-server/sessions"
)

type authTransition func(r *http.Request, c *authflow.Controller, p providerCallback, rec sessions.Record) (sessions.Record, authflow.Result, error)

// providerCallback extracts the public token and verifier from a callback
type providerCallback func(r *http.Request) (publicToken, verifier string)

// InitiateHandler starts a sign-in with the named provider.
func (s *Server) InitiateHandler() http.HandlerFunc {
	return s.authRoute(func(r *http.Request, c *authflow.Controller, _ providerCallback, rec sessions.Record) (sessions.Record, authflow.Result, error) {
		return c.Initiate(r.Context(), rec)
	})
}

// CallbackHandler completes a sign-in when the provider redirects back.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return s.authRoute(func(r *http.Request, c *authflow.Controller, params providerCallback, rec sessions.Record) (sessions.Record, authflow.Result, error) {
		publicToken, verifier := params(r)
		return c.Callback(r.Context(), rec, publicToken, verifier)
	})
}

// LogoutHandler signs the user out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return s.authRoute(func(r *http.Request, c *authflow.Controller, _ providerCallback, rec sessions.Record) (sessions.Record, authflow.Result, error) {
		next, result := c.Logout(r.Context(), rec)
		return next, result, nil
	})
}

func (s *Server) authRoute(transition authTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := s.providers.Get(r.PathValue(providerPathValue))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		state, ok := StateFrom(r.Context())
		if !ok {
			s.renderError(w, r, errNoRequestState)
			return
		}

		params := func(r *http.Request) (string, string) {
			return provider.CallbackParams(r.URL.Query())
		}
		rec, result, err := transition(r, authflow.New(provider), params, state.Session.Record)
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		state.Session.Record = rec
		storeState(r.Context(), state)

		// The redirect must carry the cookie, so the session is saved here
		// rather than left to the middleware.
		if err := s.commitSession(w, r); err != nil {
			s.renderError(w, r, err)
			return
		}

		switch result.Outcome {
		case authflow.RedirectProvider:
			redirectFound(w, r, result.RedirectURL)
		default:
			redirectFound(w, r, s.homePath)
		}
	}
}
