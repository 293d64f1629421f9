package bearer

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrUnpack is returned when an opaque token cannot be opened.
var ErrUnpack = errors.New("unable to unpack token")

// Packer seals a payload into an opaque string.
type Packer interface {
	Pack(payload []byte) (string, error)
}

// Unpacker reverses Pack. It must fail on any tampered or malformed input.
type Unpacker interface {
	Unpack(token string) ([]byte, error)
}

// Sealer packs payloads with XChaCha20-Poly1305. The opaque form is the
// unpadded base64url encoding of nonce||ciphertext.
type Sealer struct {
	key []byte
}

var (
	_ Packer   = (*Sealer)(nil)
	_ Unpacker = (*Sealer)(nil)
)

// NewSealer creates a sealer for a 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("sealer key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

func (s *Sealer) Pack(payload []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("[Sealer Pack] cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(payload)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[Sealer Pack] nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, payload, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Unpack(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrUnpack
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[Sealer Unpack] cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrUnpack
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	payload, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrUnpack
	}
	return payload, nil
}
