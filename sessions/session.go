// Package sessions persists the identity provider's last known session for
// each subject and extracts the expiry of the tokens inside it.
package sessions

import (
	"encoding/json"
	"fmt"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

// Session is the provider-issued session: an access/refresh JWT pair plus the
// identity it belongs to.
type Session struct {
	Did        string          `json:"did"`
	Handle     string          `json:"handle"`
	Email      string          `json:"email,omitempty"`
	AccessJwt  string          `json:"accessJwt"`
	RefreshJwt string          `json:"refreshJwt"`
	DidDoc     json.RawMessage `json:"didDoc,omitempty"`
	Active     *bool           `json:"active,omitempty"`

	raw string // serialized form this session was parsed from
}

// ParseSession decodes a serialized session. Serialize on the result returns
// the input unchanged.
func ParseSession(serialized string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(serialized), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", autherrors.ErrCorruptSession, err)
	}
	if s.AccessJwt == "" || s.RefreshJwt == "" {
		return nil, fmt.Errorf("%w: missing token pair", autherrors.ErrCorruptSession)
	}
	s.raw = serialized
	return &s, nil
}

// Serialize returns the JSON form stored in a Record.
func (s *Session) Serialize() (string, error) {
	if s.raw != "" {
		return s.raw, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("[Session Serialize] %w", err)
	}
	return string(b), nil
}
