package config

import (
	"encoding/base64"
	"fmt"
)

type TokenConfig interface {
	GetTokenKey() ([]byte, error)
}

// Token holds the bearer sealing key, base64 encoded (32 bytes decoded).
type Token struct {
	Key string `env:"TOKEN_KEY"`
}

var _ TokenConfig = Token{}

func (t Token) GetTokenKey() ([]byte, error) {
	if t.Key == "" {
		return nil, fmt.Errorf("TOKEN_KEY is not set")
	}
	key, err := base64.StdEncoding.DecodeString(t.Key)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("TOKEN_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
