package server

// Route path constants
const (
	// Auth Routes
	RouteAuthToken   = "/auth/token"
	RouteAuthSession = "/auth/session"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
