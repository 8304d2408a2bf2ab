package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewChangeMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewChangeMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("records open changes per project", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewChangeMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)

		metrics.RecordOpenChanges(context.Background(), "demo", 2)
		metrics.RecordOpenChanges(context.Background(), "payments", 5)

		data := collect(t, reader, ChangeMetricsMeterName)
		gauge, ok := data["pipeline_tracker_open_changes"].(metricdata.Gauge[int64])
		require.True(t, ok, "expected gauge data type")
		assert.Len(t, gauge.DataPoints, 2)
	})
}

func TestReconcileMetrics(t *testing.T) {
	t.Parallel()

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *ReconcileMetrics
		assert.NotPanics(t, func() {
			metrics.RecordRunDuration(context.Background(), time.Second, true)
			metrics.RecordSkippedRun(context.Background())
			metrics.RecordStageResolution(context.Background(), "jenkins", "passed")
		})

		metrics, err := NewReconcileMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("records all instruments", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewReconcileMetrics(mp)
		require.NoError(t, err)

		metrics.RecordRunDuration(context.Background(), 1500*time.Millisecond, true)
		metrics.RecordSkippedRun(context.Background())
		metrics.RecordSkippedRun(context.Background())
		metrics.RecordStageResolution(context.Background(), "jenkins", "passed")
		metrics.RecordStageResolution(context.Background(), "spinnaker", "error")

		data := collect(t, reader, ReconcileMetricsMeterName)

		hist, ok := data["pipeline_tracker_reconcile_duration_seconds"].(metricdata.Histogram[float64])
		require.True(t, ok, "expected histogram data type")
		require.NotEmpty(t, hist.DataPoints)
		assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.001)

		skipped, ok := data["pipeline_tracker_reconcile_skipped_total"].(metricdata.Sum[int64])
		require.True(t, ok, "expected sum data type")
		require.Len(t, skipped.DataPoints, 1)
		assert.Equal(t, int64(2), skipped.DataPoints[0].Value)

		resolutions, ok := data["pipeline_tracker_stage_resolutions_total"].(metricdata.Sum[int64])
		require.True(t, ok, "expected sum data type")
		assert.Len(t, resolutions.DataPoints, 2)
	})
}
