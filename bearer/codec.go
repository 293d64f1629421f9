// Package bearer turns the opaque bearer strings handed to clients into the
// provider credentials they carry, and back.
package bearer

import (
	"encoding/json"
	"strings"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/pkg/errors"
)

// Scheme is the literal Authorization header prefix accepted by Decode.
const Scheme = "Bearer "

// Credentials are the provider login details packed inside a bearer token.
// Secret is an app-level password and only ever exists inside the sealed token.
type Credentials struct {
	Identifier  string          `json:"identifier"`
	Secret      string          `json:"password"`
	Preferences json.RawMessage `json:"prefs,omitempty"`
	SubjectID   string          `json:"did,omitempty"`
}

// Sealing is a Packer and Unpacker pair, satisfied by *Sealer.
type Sealing interface {
	Packer
	Unpacker
}

// Codec maps Authorization header values to Credentials.
type Codec struct {
	sealing Sealing
}

func NewCodec(sealing Sealing) *Codec {
	return &Codec{sealing: sealing}
}

// Decode parses an Authorization header value. Every failure is reported as
// ErrMalformedToken so callers cannot tell a missing header from a forged one.
func (c *Codec) Decode(header string) (*Credentials, error) {
	if !strings.HasPrefix(header, Scheme) {
		return nil, autherrors.ErrMalformedToken
	}

	payload, err := c.sealing.Unpack(header[len(Scheme):])
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, err.Error())
	}

	var creds Credentials
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "[Decode] payload")
	}
	if creds.Identifier == "" || creds.Secret == "" {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "[Decode] missing identifier or secret")
	}
	if len(creds.Preferences) == 0 {
		creds.Preferences = json.RawMessage("{}")
	}
	return &creds, nil
}

// Encode packs credentials into the opaque token, without the scheme prefix.
func (c *Codec) Encode(creds Credentials) (string, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return "", errors.Wrap(err, "[Encode] marshal credentials")
	}
	token, err := c.sealing.Pack(payload)
	if err != nil {
		return "", errors.Wrap(err, "[Encode] pack")
	}
	return token, nil
}
