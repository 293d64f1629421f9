package server

import (
	"encoding/json"
	"net/http"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 16
)

// TokenRequest is the body of POST /auth/token
type TokenRequest struct {
	Identifier  string          `json:"identifier"`
	Password    string          `json:"password"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

// TokenResponse carries the opaque bearer token for later requests
type TokenResponse struct {
	Token  string `json:"token"`
	Did    string `json:"did"`
	Handle string `json:"handle"`
}

// SessionResponse describes the session behind a bearer token
type SessionResponse struct {
	Did         string          `json:"did"`
	Handle      string          `json:"handle"`
	Identifier  string          `json:"identifier"`
	Preferences json.RawMessage `json:"preferences"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers OPTIONS requests that CorsMiddleware let through,
// which are the ones without an Origin header.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// TokenHandler exchanges provider credentials for a bearer token
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSONError(w, "InvalidRequest", "request body must be a JSON object", http.StatusBadRequest)
			return
		}
		if req.Identifier == "" || req.Password == "" {
			writeJSONError(w, "InvalidRequest", "identifier and password are required", http.StatusBadRequest)
			return
		}
		if len(req.Preferences) > 0 && !json.Valid(req.Preferences) {
			writeJSONError(w, "InvalidRequest", "preferences must be valid JSON", http.StatusBadRequest)
			return
		}

		token, session, err := s.resolver.IssueToken(r.Context(), req.Identifier, req.Password, req.Preferences, clientIP(r))
		if err != nil {
			log.Warn().Str("outcome", autherrors.Outcome(err)).Str("identifier", req.Identifier).Msg("token issuance refused")
			writeUnauthenticated(w)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, TokenResponse{
			Token:  token,
			Did:    session.Did,
			Handle: session.Handle,
		})
	}
}

// SessionHandler describes the session resolved by RequireBearer
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := ResolutionFromContext(r.Context())
		if !ok {
			writeUnauthenticated(w)
			return
		}

		writeJSON(w, http.StatusOK, SessionResponse{
			Did:         res.Session.Did,
			Handle:      res.Session.Handle,
			Identifier:  res.Identifier,
			Preferences: res.Preferences,
		})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
