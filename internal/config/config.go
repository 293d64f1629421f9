package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

type Config interface {
	EnvConfig
	CorsConfig
	StoreConfig
	LimiterConfig
	ProviderConfig
	TokenConfig
	MetricsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Store
	Limiter
	Provider
	Token
	Metrics
}

// New decodes every configuration group from the environment. Defaults live
// in the struct tags of each group.
func New() (Config, error) {
	c := mainConfig{}
	targets := map[string]any{
		"env":      &c.EnvVars,
		"cors":     &c.Cors,
		"store":    &c.Store,
		"limiter":  &c.Limiter,
		"provider": &c.Provider,
		"token":    &c.Token,
		"metrics":  &c.Metrics,
	}
	for name, target := range targets {
		if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil, fmt.Errorf("[config New] decoding %s config: %w", name, err)
		}
	}
	return c, nil
}
