// Package provider talks to the remote identity provider that owns the
// accounts behind every bearer token.
package provider

import (
	"context"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/jrsteele09/go-auth-bridge/sessions"
)

// Provider failures. Every error returned by a Provider wraps one of these.
var (
	ErrInvalidCredentials = autherrors.ErrInvalidCredentials
	ErrUnavailable        = autherrors.ErrProviderUnavailable
)

// Provider creates and refreshes sessions with the identity provider.
type Provider interface {
	// CreateSession logs in with an identifier and app password
	CreateSession(ctx context.Context, identifier, secret string) (*sessions.Session, error)

	// RefreshSession exchanges a refresh JWT for a new session
	RefreshSession(ctx context.Context, refreshToken string) (*sessions.Session, error)
}
