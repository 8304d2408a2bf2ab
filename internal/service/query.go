package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/otel"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store"
)

// Option configures the query service
type Option func(*queryService)

// WithTracer sets the OpenTelemetry tracer for the query service.
// If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *queryService) {
		s.tracer = tracer
	}
}

// queryService implements QueryService on top of a catalog and a store
type queryService struct {
	catalog catalog.Catalog
	store   store.Store
	tracer  trace.Tracer
}

var _ QueryService = (*queryService)(nil)

// New creates a query service. It never writes to the store.
func New(cat catalog.Catalog, st store.Store, opts ...Option) QueryService {
	s := &queryService{
		catalog: cat,
		store:   st,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness checks if the store is reachable
func (s *queryService) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// GetHistory resolves the entity and returns the persisted snapshots of its project
func (s *queryService) GetHistory(ctx context.Context, ref catalog.EntityRef) ([]pipeline.ChangePipelineStatus, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.GetHistory",
		trace.WithAttributes(otel.AttrEntityRef.String(ref.String())),
	)
	defer span.End()

	entity, err := s.catalog.GetEntityByRef(ctx, ref)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	projectName, ok := entity.ProjectName()
	if !ok {
		slog.DebugContext(ctx, "Entity has no project annotation", "entity", ref.String())
		return []pipeline.ChangePipelineStatus{}, nil
	}
	span.SetAttributes(otel.AttrProjectName.String(projectName))

	records, err := s.store.GetByProject(ctx, projectName)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read changes of project %s: %w", projectName, err)
	}

	history := make([]pipeline.ChangePipelineStatus, 0, len(records))
	for _, r := range records {
		history = append(history, r.PipelineStatus())
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(history)))
	return history, nil
}

// ListSyncStatuses returns the reconciliation status of every project
func (s *queryService) ListSyncStatuses(ctx context.Context) (map[string]*status.ProjectSyncStatus, error) {
	statuses, err := s.store.LoadAllStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync statuses: %w", err)
	}
	return statuses, nil
}

// GetSyncStatus returns the reconciliation status of one project
func (s *queryService) GetSyncStatus(ctx context.Context, projectName string) (*status.ProjectSyncStatus, error) {
	st, err := s.store.LoadStatus(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync status of %s: %w", projectName, err)
	}
	// An empty phase means the project was never reconciled
	if st == nil || st.Phase == "" {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
	}
	return st, nil
}
