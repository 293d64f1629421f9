package config

type MetricsConfig interface {
	GetMetricsEnabled() bool
}

type Metrics struct {
	Enabled bool `env:"METRICS_ENABLED,default=true"`
}

var _ MetricsConfig = Metrics{}

// GetMetricsEnabled reports whether GET /metrics serves Prometheus metrics.
func (m Metrics) GetMetricsEnabled() bool {
	return m.Enabled
}
