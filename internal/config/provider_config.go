package config

import "time"

type ProviderConfig interface {
	GetProviderURL() string
	GetProviderTimeout() time.Duration
}

type Provider struct {
	URL     string        `env:"PROVIDER_URL,default=https://bsky.social"`
	Timeout time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`
}

var _ ProviderConfig = Provider{}

func (p Provider) GetProviderURL() string {
	return p.URL
}

func (p Provider) GetProviderTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return p.Timeout
}
