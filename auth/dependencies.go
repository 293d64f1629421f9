package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-bridge/bearer"
	"github.com/jrsteele09/go-auth-bridge/provider"
	"github.com/jrsteele09/go-auth-bridge/sessions"
)

// CredentialCodec converts Authorization header values to credentials and back.
type CredentialCodec interface {
	Decode(header string) (*bearer.Credentials, error)
	Encode(creds bearer.Credentials) (string, error)
}

// AttemptLimiter guards the re-authentication path per client IP.
type AttemptLimiter interface {
	IsLocked(ctx context.Context, ip string) (bool, error)
	RecordFailure(ctx context.Context, ip string) error
	Reset(ctx context.Context, ip string) error
}

// SessionStore persists the provider session of each subject.
type SessionStore interface {
	Get(ctx context.Context, subjectID string) (*sessions.Record, error)
	Save(ctx context.Context, subjectID string, session *sessions.Session) error
	Decode(rec *sessions.Record) (*sessions.Session, sessions.Claims, error)
}

// Dependencies holds every collaborator of the Resolver
type Dependencies struct {
	Codec    CredentialCodec   // Bearer token codec
	Limiter  AttemptLimiter    // Per IP brute-force protection
	Sessions SessionStore      // Persistent session records
	Provider provider.Provider // Remote identity provider
}
