package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.metricsHandler != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metricsHandler)
	}

	// Token issuance is the only route that accepts raw credentials
	s.RegisterRouteHandler("POST "+RouteAuthToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAuthToken, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Protected routes
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("OPTIONS "+RouteAuthSession, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
