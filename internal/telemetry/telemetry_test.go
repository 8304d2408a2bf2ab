package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew_NoOp(t *testing.T) {
	t.Parallel()

	configs := map[string]*Config{
		"no config":      nil,
		"disabled":       {Enabled: false, Tracing: &TracingConfig{Enabled: true}},
		"nothing inside": {Enabled: true, Tracing: &TracingConfig{}, Metrics: &MetricsConfig{}},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tel, err := New(context.Background(), WithTelemetryConfig(cfg))
			require.NoError(t, err)

			assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())
			assert.IsType(t, metricnoop.MeterProvider{}, tel.MeterProvider())
			assert.Nil(t, tel.MetricsHandler())
			require.NoError(t, tel.Shutdown(context.Background()))
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: 1.5},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

//nolint:paralleltest // installs global OpenTelemetry providers
func TestNew_PrometheusOnly(t *testing.T) {
	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Prometheus: true, DisableOTLP: true},
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	assert.IsType(t, &sdkmetric.MeterProvider{}, tel.MeterProvider())
	assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())

	reconcile, err := NewReconcileMetrics(tel.MeterProvider())
	require.NoError(t, err)
	reconcile.RecordSkippedRun(context.Background())

	handler := tel.MetricsHandler()
	require.NotNil(t, handler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pipeline_tracker_reconcile_skipped_total")
}

//nolint:paralleltest // installs global OpenTelemetry providers
func TestNew_TracingAndShutdown(t *testing.T) {
	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled:  true,
		Endpoint: "127.0.0.1:1",
		Insecure: true,
		Tracing:  &TracingConfig{Enabled: true, Sampling: 1},
	}))
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, tel.TracerProvider())

	_, span := tel.TracerProvider().Tracer("test").Start(context.Background(), "noop")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the batcher cannot reach the collector; shutdown still returns
	_ = tel.Shutdown(ctx)
	require.NoError(t, tel.Shutdown(context.Background()), "second shutdown is a no-op")
}
