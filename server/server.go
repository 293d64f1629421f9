package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-bridge/auth"
	"github.com/jrsteele09/go-auth-bridge/internal/config"
	"github.com/jrsteele09/go-auth-bridge/sessions"
	"github.com/rs/zerolog/log"
)

// Config is the part of the application config the HTTP layer reads.
type Config interface {
	config.EnvConfig
	config.CorsConfig
}

// SessionResolver is satisfied by *auth.Resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, bearerHeader, clientIP string) (*auth.Resolution, error)
	IssueToken(ctx context.Context, identifier, secret string, preferences json.RawMessage, clientIP string) (string, *sessions.Session, error)
}

type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	mux            *http.ServeMux
	routes         []string
	config         Config
	resolver       SessionResolver
	metricsHandler http.Handler
}

type ServerOption func(*Server)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

func New(config Config, resolver SessionResolver, options ...ServerOption) (*Server, error) {
	if resolver == nil {
		return nil, fmt.Errorf("[Server New] resolver is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		resolver: resolver,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
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
