package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - one set per identity provider
	RouteAuthInitiate = "/auth/{provider}"
	RouteAuthCallback = "/auth/{provider}/callback"
	RouteAuthLogout   = "/auth/{provider}/logout"

	// Signed-in user
	RouteMe = "/me"

	// Process Routes
	RouteHealth = "/healthz"

	// Catch-all
	RouteNotFound = "/"
)

const providerPathValue = "provider"
