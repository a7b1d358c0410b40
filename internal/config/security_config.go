package config

type SecurityConfig interface {
	GetTrustProxy() bool
	GetCookieSecret() string
}

// GetTrustProxy reports whether the server sits behind a reverse proxy whose
// X-Forwarded-* headers can be believed.
func (c mainConfig) GetTrustProxy() bool {
	return c.values.TrustProxy
}

func (c mainConfig) GetCookieSecret() string {
	return c.values.CookieSecret
}
