package server

import (
	"net"
	"net/http"
	"strings"
)

// ProxyTrustMiddleware records the client address and request scheme. Behind
// a trusted reverse proxy both come from the X-Forwarded-* headers.
func (s *Server) ProxyTrustMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state, ok := StateFrom(r.Context()); ok {
			state.ClientAddr = ClientAddress(r, s.trustProxy)
			state.Scheme = RequestScheme(r, s.trustProxy)
			storeState(r.Context(), state)
		}
		next(w, r)
	}
}

// ClientAddress returns the left-most X-Forwarded-For entry when the proxy is
// trusted, otherwise the transport peer's host.
func ClientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if addr := strings.TrimSpace(first); addr != "" {
				return addr
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestScheme determines the scheme (http/https) the client used.
func RequestScheme(r *http.Request, trustProxy bool) string {
	if r.TLS != nil {
		return "https"
	}
	if trustProxy {
		if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
			first, _, _ := strings.Cut(scheme, ",")
			return strings.ToLower(strings.TrimSpace(first))
		}
	}
	return "http"
}
