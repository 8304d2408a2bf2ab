// Package aggregator resolves every stage of a project's pipeline for a change
// and derives the change's current stage.
package aggregator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/pipeline-tracker/internal/otel"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/resolver"
	"github.com/stacklok/pipeline-tracker/internal/telemetry"
)

// outcomeError labels stage resolutions that returned an error
const outcomeError = "error"

// Aggregator computes the pipeline status of a change
type Aggregator struct {
	resolver resolver.Resolver
	tracer   trace.Tracer
	metrics  *telemetry.ReconcileMetrics
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithTracer sets the tracer used for aggregation spans
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Aggregator) {
		a.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder for stage resolutions
func WithMetrics(m *telemetry.ReconcileMetrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// New creates an Aggregator that dispatches every stage to r
func New(r resolver.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{resolver: r}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate resolves all stages concurrently. The first failing stage cancels
// the others and fails the aggregation. Stage states keep the order of stages.
func (a *Aggregator) Aggregate(
	ctx context.Context, change pipeline.ChangeInfo, stages []pipeline.Stage,
) (pipeline.ChangePipelineStatus, error) {
	ctx, span := otel.StartSpan(ctx, a.tracer, "aggregator.Aggregate",
		trace.WithAttributes(
			otel.AttrProjectName.String(change.ProjectName),
			otel.AttrChangeNumber.Int64(change.Number),
			otel.AttrStageCount.Int(len(stages)),
		),
	)
	defer span.End()

	results := make([]pipeline.StageState, len(stages))

	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range stages {
		g.Go(func() error {
			sctx, stageSpan := otel.StartSpan(gctx, a.tracer, "aggregator.resolveStage",
				trace.WithAttributes(
					otel.AttrStageType.String(string(stage.Type)),
					otel.AttrStageName.String(stage.Name),
				),
			)
			defer stageSpan.End()

			status, err := a.resolver.Resolve(sctx, stage, change)
			if err != nil {
				otel.RecordError(stageSpan, err)
				a.metrics.RecordStageResolution(gctx, string(stage.Type), outcomeError)
				return fmt.Errorf("stage %q (%s): %w", stage.Name, stage.Type, err)
			}
			a.metrics.RecordStageResolution(gctx, string(stage.Type), string(status.Type))
			results[i] = pipeline.StageState{Stage: stage, Status: status}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		otel.RecordError(span, err)
		return pipeline.ChangePipelineStatus{}, fmt.Errorf("failed to aggregate change %s: %w", change.Key(), err)
	}

	result := pipeline.NewChangePipelineStatus(change, results)
	if result.Current != nil {
		span.SetAttributes(attribute.String("current.stage", result.Current.Stage.Name))
	}
	return result, nil
}
