package sessions

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

// Claims holds the expiry instants of a session's token pair.
type Claims struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ParseClaims extracts the exp claim of both JWTs in s. The signatures are
// not verified: the tokens came from the provider and are only ever sent back
// to it. A token without a readable exp claim is a corrupt session, never an
// expired one.
func ParseClaims(s *Session) (Claims, error) {
	access, err := expiry(s.AccessJwt)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: access token: %v", autherrors.ErrCorruptSession, err)
	}
	refresh, err := expiry(s.RefreshJwt)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: refresh token: %v", autherrors.ErrCorruptSession, err)
	}
	return Claims{AccessExpiresAt: access, RefreshExpiresAt: refresh}, nil
}

func expiry(rawToken string) (time.Time, error) {
	claims := &jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("no exp claim")
	}
	return claims.ExpiresAt.Time.UTC(), nil
}
