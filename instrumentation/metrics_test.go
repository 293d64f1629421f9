package instrumentation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jrsteele09/go-auth-bridge/instrumentation"
	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func valueFor(sum metricdata.Sum[int64], key, want string) int64 {
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == want {
			return dp.Value
		}
	}
	return 0
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := instrumentation.NewMetrics(mp)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordResolution(ctx, nil)
	m.RecordResolution(ctx, nil)
	m.RecordResolution(ctx, autherrors.ErrRateLimited)
	m.RecordProviderCall(ctx, "create_session", autherrors.ErrInvalidCredentials)
	m.RecordProviderCall(ctx, "refresh_session", nil)
	m.RecordLockout(ctx)

	got := collect(t, reader)
	require.Equal(t, int64(2), valueFor(got["bridge.resolutions"], "outcome", "authenticated"))
	require.Equal(t, int64(1), valueFor(got["bridge.resolutions"], "outcome", "rate_limited"))
	require.Equal(t, int64(1), valueFor(got["bridge.provider.calls"], "result", "invalid_credentials"))
	require.Equal(t, int64(1), valueFor(got["bridge.provider.calls"], "operation", "refresh_session"))
	require.Len(t, got["bridge.ratelimit.lockouts"].DataPoints, 1)
	require.Equal(t, int64(1), got["bridge.ratelimit.lockouts"].DataPoints[0].Value)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *instrumentation.Metrics
	ctx := context.Background()

	m.RecordResolution(ctx, nil)
	m.RecordProviderCall(ctx, "create_session", nil)
	m.RecordLockout(ctx)
}
