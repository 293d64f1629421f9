package server

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-bridge/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyResolution stores the *auth.Resolution of an authenticated request
const ContextKeyResolution ContextKey = "resolution"

const (
	errorInvalidToken   = "InvalidToken"
	messageInvalidToken = "access token invalid"
)

// RequireBearer resolves the Authorization header to a live provider session.
// Every failure gets the same 401 so callers cannot tell a lockout from a
// wrong password or a provider outage.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			res, err := s.resolver.Resolve(r.Context(), r.Header.Get("Authorization"), clientIP(r))
			if err != nil {
				writeUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyResolution, res)
			next(w, r.WithContext(ctx))
		}
	}
}

// ResolutionFromContext returns the resolution stored by RequireBearer.
func ResolutionFromContext(ctx context.Context) (*auth.Resolution, bool) {
	res, ok := ctx.Value(ContextKeyResolution).(*auth.Resolution)
	return res, ok && res != nil
}

// clientIP is the first X-Forwarded-For entry, else the host of RemoteAddr.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, errorInvalidToken, messageInvalidToken, http.StatusUnauthorized)
}
