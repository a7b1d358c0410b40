package server

import (
	"net/http"
	"net/url"
	"time"
)

const (
	// sessionCookieName carries the signed session id
	sessionCookieName = "sid"
	// userNameCookieName mirrors the display name for client-side scripts,
	// percent-encoded so decodeURIComponent recovers it. It is never read by
	// the server and carries no authority.
	userNameCookieName = "userName"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, secure bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) setUserNameCookie(w http.ResponseWriter, displayName string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     userNameCookieName,
		Value:    url.PathEscape(displayName),
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectFound sends a 302 to path
func redirectFound(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}
