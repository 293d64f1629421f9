// Package instrumentation records OpenTelemetry metrics for the
// authentication gate.
package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

const meterName = "github.com/jrsteele09/go-auth-bridge"

// Metrics holds the metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	resolutions   metric.Int64Counter
	providerCalls metric.Int64Counter
	lockouts      metric.Int64Counter
}

// NewMetrics creates the instruments on mp, or on the global provider when
// mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	m := &Metrics{}
	var err error
	m.resolutions, err = meter.Int64Counter(
		"bridge.resolutions",
		metric.WithDescription("Bearer token resolutions by outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge.resolutions counter: %w", err)
	}

	m.providerCalls, err = meter.Int64Counter(
		"bridge.provider.calls",
		metric.WithDescription("Identity provider calls by operation and result"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge.provider.calls counter: %w", err)
	}

	m.lockouts, err = meter.Int64Counter(
		"bridge.ratelimit.lockouts",
		metric.WithDescription("Re-authentication attempts refused because the client IP is locked out"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge.ratelimit.lockouts counter: %w", err)
	}

	return m, nil
}

// RecordResolution counts one finished resolution; err nil means success.
func (m *Metrics) RecordResolution(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", autherrors.Outcome(err))))
}

// RecordProviderCall counts one create or refresh call to the provider.
func (m *Metrics) RecordProviderCall(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = autherrors.Outcome(err)
	}
	m.providerCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

func (m *Metrics) RecordLockout(ctx context.Context) {
	if m == nil {
		return
	}
	m.lockouts.Add(ctx, 1)
}
