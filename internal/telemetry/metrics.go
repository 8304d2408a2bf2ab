// Package telemetry provides OpenTelemetry instrumentation for the pipeline tracker.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ChangeMetricsMeterName is the name used for the tracked change metrics meter
	ChangeMetricsMeterName = "github.com/stacklok/pipeline-tracker/changes"

	// ReconcileMetricsMeterName is the name used for the reconciliation metrics meter
	ReconcileMetricsMeterName = "github.com/stacklok/pipeline-tracker/reconcile"
)

// ChangeMetrics holds the OpenTelemetry instruments for tracked change metrics
type ChangeMetrics struct {
	openChanges metric.Int64Gauge
}

// NewChangeMetrics creates a new ChangeMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewChangeMetrics(provider metric.MeterProvider) (*ChangeMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ChangeMetricsMeterName)

	openChanges, err := meter.Int64Gauge(
		"pipeline_tracker_open_changes",
		metric.WithDescription("Number of open changes tracked for each project"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	return &ChangeMetrics{
		openChanges: openChanges,
	}, nil
}

// RecordOpenChanges records the number of open changes persisted for a project
func (m *ChangeMetrics) RecordOpenChanges(ctx context.Context, project string, count int64) {
	if m == nil || m.openChanges == nil {
		return
	}

	m.openChanges.Record(ctx, count, metric.WithAttributes(attribute.String("project", project)))
}

// ReconcileMetrics holds the OpenTelemetry instruments for reconciliation passes
type ReconcileMetrics struct {
	runDuration      metric.Float64Histogram
	skippedRuns      metric.Int64Counter
	stageResolutions metric.Int64Counter
}

// NewReconcileMetrics creates a new ReconcileMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewReconcileMetrics(provider metric.MeterProvider) (*ReconcileMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ReconcileMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"pipeline_tracker_reconcile_duration_seconds",
		metric.WithDescription("Duration of reconciliation passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	skippedRuns, err := meter.Int64Counter(
		"pipeline_tracker_reconcile_skipped_total",
		metric.WithDescription("Ticks skipped because a reconciliation pass was still running"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	stageResolutions, err := meter.Int64Counter(
		"pipeline_tracker_stage_resolutions_total",
		metric.WithDescription("Stage status resolutions by stage type and outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReconcileMetrics{
		runDuration:      runDuration,
		skippedRuns:      skippedRuns,
		stageResolutions: stageResolutions,
	}, nil
}

// RecordRunDuration records the duration of a reconciliation pass
func (m *ReconcileMetrics) RecordRunDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.runDuration == nil {
		return
	}

	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordSkippedRun counts a tick that fired while a pass was in flight
func (m *ReconcileMetrics) RecordSkippedRun(ctx context.Context) {
	if m == nil || m.skippedRuns == nil {
		return
	}

	m.skippedRuns.Add(ctx, 1)
}

// RecordStageResolution counts one resolver call
func (m *ReconcileMetrics) RecordStageResolution(ctx context.Context, stageType, outcome string) {
	if m == nil || m.stageResolutions == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("stage_type", stageType),
		attribute.String("outcome", outcome),
	}

	m.stageResolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
}
