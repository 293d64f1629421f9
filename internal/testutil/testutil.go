// Package testutil builds provider sessions with real JWT expiry claims for
// tests across the module.
package testutil

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-bridge/sessions"
)

var signingKey = []byte("test-signing-key")

// MintJWT returns an HS256 token for subject expiring at exp.
func MintJWT(subject string, exp time.Time) string {
	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwtlib.NewNumericDate(exp),
		IssuedAt:  jwtlib.NewNumericDate(exp.Add(-time.Minute)),
		ID:        uuid.NewString(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("mint jwt: %v", err))
	}
	return signed
}

// MintSession returns a session for did whose access and refresh tokens
// expire at the given instants.
func MintSession(did string, accessExp, refreshExp time.Time) *sessions.Session {
	return &sessions.Session{
		Did:        did,
		Handle:     "handle-" + did,
		AccessJwt:  MintJWT(did, accessExp),
		RefreshJwt: MintJWT(did, refreshExp),
	}
}

// Serialized returns the stored form of s.
func Serialized(s *sessions.Session) string {
	out, err := s.Serialize()
	if err != nil {
		panic(fmt.Sprintf("serialize session: %v", err))
	}
	return out
}
