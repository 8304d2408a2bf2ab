package sync

import (
	"context"
	"fmt"
	"slices"
	stdsync "sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/changes"
	"github.com/stacklok/pipeline-tracker/internal/filtering"
	"github.com/stacklok/pipeline-tracker/internal/otel"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store"
	"github.com/stacklok/pipeline-tracker/internal/telemetry"
)

// Reasons reported in Error
const (
	// ReasonCatalogUnavailable means the tracked projects could not be listed
	ReasonCatalogUnavailable = "CatalogUnavailable"
)

// DefaultConcurrency is the number of projects reconciled in parallel when unset
const DefaultConcurrency = 4

// Result summarises a reconciliation pass
type Result struct {
	// Projects is the number of tracked projects
	Projects int
	// FailedProjects is the number of projects whose changes could not be listed
	FailedProjects int
	// Changes is the number of change snapshots written
	Changes int
	// FailedChanges is the number of changes that could not be aggregated or written
	FailedChanges int
	// Pruned is the number of rows removed for changes no longer open
	Pruned int64
}

// Error is a run-level failure
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Aggregator computes the pipeline status of one change
type Aggregator interface {
	Aggregate(ctx context.Context, change pipeline.ChangeInfo, stages []pipeline.Stage) (pipeline.ChangePipelineStatus, error)
}

// Manager performs reconciliation passes
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/pipeline-tracker/internal/sync Manager
type Manager interface {
	// PerformRun executes one complete reconciliation pass
	PerformRun(ctx context.Context) (*Result, *Error)
}

// defaultManager is the default implementation of Manager
type defaultManager struct {
	catalog     catalog.Catalog
	source      changes.Source
	aggregator  Aggregator
	store       store.Store
	pruner      store.Pruner
	filter      filtering.ProjectFilter
	concurrency int
	tracer      trace.Tracer
	metrics     *telemetry.ChangeMetrics
	now         func() time.Time
}

// Option configures the manager
type Option func(*defaultManager)

// WithConcurrency bounds the number of projects reconciled in parallel
func WithConcurrency(n int) Option {
	return func(m *defaultManager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithPruner enables deletion of rows for changes that are no longer open
func WithPruner(p store.Pruner) Option {
	return func(m *defaultManager) {
		m.pruner = p
	}
}

// WithProjectFilter restricts reconciliation to the projects the filter accepts
func WithProjectFilter(f filtering.ProjectFilter) Option {
	return func(m *defaultManager) {
		m.filter = f
	}
}

// WithTracer sets the tracer for run and project spans
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultManager) {
		m.tracer = tracer
	}
}

// WithChangeMetrics sets the open change gauge recorder
func WithChangeMetrics(metrics *telemetry.ChangeMetrics) Option {
	return func(m *defaultManager) {
		m.metrics = metrics
	}
}

// WithClock overrides the time source used for sync status
func WithClock(now func() time.Time) Option {
	return func(m *defaultManager) {
		m.now = now
	}
}

// NewManager creates a Manager
func NewManager(
	cat catalog.Catalog,
	source changes.Source,
	agg Aggregator,
	st store.Store,
	opts ...Option,
) Manager {
	m := &defaultManager{
		catalog:     cat,
		source:      source,
		aggregator:  agg,
		store:       st,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// project is a tracked project and the stages configured for it
type project struct {
	name   string
	ref    catalog.EntityRef
	stages []pipeline.Stage
}

// PerformRun lists the tracked projects and reconciles them with bounded parallelism
func (m *defaultManager) PerformRun(ctx context.Context) (*Result, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.PerformRun")
	defer span.End()

	logger := log.FromContext(ctx)

	entities, err := m.catalog.ListEntities(ctx, catalog.Filter{WithStages: true})
	if err != nil {
		otel.RecordError(span, err)
		return nil, &Error{
			Err:     err,
			Message: fmt.Sprintf("Failed to list tracked projects: %v", err),
			Reason:  ReasonCatalogUnavailable,
		}
	}

	projects := m.trackedProjects(ctx, entities)
	span.SetAttributes(otel.AttrResultCount.Int(len(projects)))

	var (
		mu     stdsync.Mutex
		result = &Result{Projects: len(projects)}
	)

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for _, p := range projects {
		g.Go(func() error {
			outcome := m.syncProject(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if outcome.err != nil {
				result.FailedProjects++
			}
			result.Changes += outcome.written
			result.FailedChanges += outcome.failed
			result.Pruned += outcome.pruned
			return nil
		})
	}
	// Project failures are contained in their outcome
	_ = g.Wait()

	logger.Info("Reconciliation pass finished",
		"projects", result.Projects,
		"failedProjects", result.FailedProjects,
		"changes", result.Changes,
		"failedChanges", result.FailedChanges,
		"pruned", result.Pruned,
	)
	return result, nil
}

// trackedProjects keeps entities carrying the project annotation that pass the
// project filter. When several entities name the same project the first one wins.
func (m *defaultManager) trackedProjects(ctx context.Context, entities []catalog.Entity) []project {
	logger := log.FromContext(ctx)

	seen := make(map[string]catalog.EntityRef, len(entities))
	projects := make([]project, 0, len(entities))
	for _, e := range entities {
		name, ok := e.ProjectName()
		if !ok {
			logger.V(1).Info("Entity has no project annotation, skipping", "entity", e.Ref().String())
			continue
		}
		if m.filter != nil {
			if ok, reason := m.filter.ShouldTrack(name, e.Metadata.Tags); !ok {
				logger.V(1).Info("Project filtered out", "project", name, "reason", reason)
				continue
			}
		}
		if first, dup := seen[name]; dup {
			logger.Info("Project already tracked by another entity, skipping",
				"project", name, "entity", e.Ref().String(), "trackedBy", first.String())
			continue
		}
		seen[name] = e.Ref()
		projects = append(projects, project{name: name, ref: e.Ref(), stages: e.Stages()})
	}
	return projects
}

type projectOutcome struct {
	written int
	failed  int
	pruned  int64
	err     error
}

// syncProject reconciles one project and records its sync status
func (m *defaultManager) syncProject(ctx context.Context, p project) (outcome projectOutcome) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.syncProject",
		trace.WithAttributes(
			otel.AttrProjectName.String(p.name),
			otel.AttrEntityRef.String(p.ref.String()),
			otel.AttrStageCount.Int(len(p.stages)),
		),
	)
	defer span.End()

	logger := log.FromContext(ctx).WithValues("project", p.name)

	syncStatus, err := m.store.LoadStatus(ctx, p.name)
	if err != nil {
		logger.Error(err, "Failed to load sync status, starting fresh")
		syncStatus = &status.ProjectSyncStatus{}
	}
	syncStatus.MarkSyncing(m.now())
	m.saveStatus(ctx, p.name, syncStatus)

	defer func() {
		if outcome.err != nil {
			otel.RecordError(span, outcome.err)
			syncStatus.MarkFailed(outcome.err.Error())
		} else {
			syncStatus.MarkComplete(m.now(), outcome.written)
			if outcome.failed > 0 {
				syncStatus.Message = fmt.Sprintf("%d change(s) could not be reconciled", outcome.failed)
			}
		}
		// The final status is written even when the run timed out
		m.saveStatus(context.WithoutCancel(ctx), p.name, syncStatus)
	}()

	open, err := m.source.ListOpenChanges(ctx, p.name)
	if err != nil {
		logger.Error(err, "Failed to list open changes")
		outcome.err = fmt.Errorf("failed to list open changes: %w", err)
		return outcome
	}
	m.metrics.RecordOpenChanges(ctx, p.name, int64(len(open)))

	keep := make([]int64, 0, len(open))
	for _, change := range open {
		// Rows are keyed by the tracked project so reads and pruning find them
		if change.ProjectName != p.name {
			if change.ProjectName != "" {
				logger.V(1).Info("Upstream project name differs from tracked project",
					"change", change.Number, "upstream", change.ProjectName)
			}
			change.ProjectName = p.name
		}
		keep = append(keep, change.Number)

		snapshot, err := m.aggregator.Aggregate(ctx, change, p.stages)
		if err != nil {
			logger.Error(err, "Failed to aggregate change, skipping", "change", change.Number)
			outcome.failed++
			continue
		}
		if err := m.store.Upsert(ctx, snapshot); err != nil {
			logger.Error(err, "Failed to store change, skipping", "change", change.Number)
			outcome.failed++
			continue
		}
		outcome.written++
	}

	if m.pruner != nil && ctx.Err() == nil {
		slices.Sort(keep)
		pruned, err := m.pruner.PruneProject(ctx, p.name, keep)
		if err != nil {
			logger.Error(err, "Failed to prune closed changes")
		} else if pruned > 0 {
			logger.Info("Pruned closed changes", "count", pruned)
		}
		outcome.pruned = pruned
	}

	return outcome
}

func (m *defaultManager) saveStatus(ctx context.Context, projectName string, st *status.ProjectSyncStatus) {
	if err := m.store.SaveStatus(ctx, projectName, st); err != nil {
		log.FromContext(ctx).Error(err, "Failed to persist sync status", "project", projectName)
	}
}
