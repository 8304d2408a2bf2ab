package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/stacklok/pipeline-tracker/internal/otel"
)

// runOnce performs a single reconciliation pass bounded by the run timeout
func (c *defaultCoordinator) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, c.schedule.timeout)
	defer cancel()

	runCtx, span := otel.StartSpan(runCtx, c.tracer, "coordinator.run")
	defer span.End()

	startTime := time.Now()
	slog.Debug("Starting reconciliation pass")

	result, runErr := c.manager.PerformRun(runCtx)
	duration := time.Since(startTime)

	if runErr != nil {
		otel.RecordError(span, runErr)
		slog.Error("Reconciliation pass failed",
			"reason", runErr.Reason,
			"error", runErr.Message,
			"duration", duration)
		c.metrics.RecordRunDuration(ctx, duration, false)
		return
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		span.SetStatus(codes.Error, "run timed out")
		slog.Error("Reconciliation pass exceeded its timeout, results are partial",
			"timeout", c.schedule.timeout,
			"changes", result.Changes)
		c.metrics.RecordRunDuration(ctx, duration, false)
		return
	}

	slog.Info("Reconciliation pass completed",
		"projects", result.Projects,
		"failed_projects", result.FailedProjects,
		"changes", result.Changes,
		"failed_changes", result.FailedChanges,
		"duration", duration)
	c.metrics.RecordRunDuration(ctx, duration, result.FailedProjects == 0)
}
