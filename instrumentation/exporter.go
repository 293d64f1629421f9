package instrumentation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter is a meter provider whose readings are served in Prometheus
// text format by Handler.
type Exporter struct {
	meterProvider *sdkmetric.MeterProvider
	handler       http.Handler
}

// NewPrometheusExporter registers on its own registry, so several exporters
// can live in one process.
func NewPrometheusExporter(serviceName string) (*Exporter, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	reader, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Exporter{
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		),
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

func (e *Exporter) MeterProvider() *sdkmetric.MeterProvider {
	return e.meterProvider
}

// Handler serves GET /metrics.
func (e *Exporter) Handler() http.Handler {
	return e.handler
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.meterProvider.Shutdown(ctx)
}
