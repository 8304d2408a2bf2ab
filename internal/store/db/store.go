// Package db provides a PostgreSQL-backed Store.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pipeline-tracker/internal/db/pgtypes"
	"github.com/stacklok/pipeline-tracker/internal/db/sqlc"
	"github.com/stacklok/pipeline-tracker/internal/otel"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store"
)

// Store persists change snapshots in the changes table
type Store struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
	tracer  trace.Tracer
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pruner = (*Store)(nil)
)

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller is responsible for closing it.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. Without one tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// New creates a database store
func New(opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &Store{
		pool:    o.pool,
		queries: sqlc.New(o.pool),
		tracer:  o.tracer,
	}, nil
}

// Upsert inserts or updates the row keyed by (project name, number)
func (s *Store) Upsert(ctx context.Context, st pipeline.ChangePipelineStatus) error {
	ctx, span := s.startSpan(ctx, "db.Upsert",
		trace.WithAttributes(
			otel.AttrProjectName.String(st.Change.ProjectName),
			otel.AttrChangeNumber.Int64(st.Change.Number),
			otel.AttrStageCount.Int(len(st.Stages)),
		),
	)
	defer span.End()

	stages := st.Stages
	if stages == nil {
		stages = []pipeline.StageState{}
	}
	stagesJSON, err := json.Marshal(stages)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to marshal stages of %s: %w", st.Change.Key(), err)
	}

	_, err = s.queries.UpsertChange(ctx, sqlc.UpsertChangeParams{
		ID:          uuid.New(),
		Number:      st.Change.Number,
		Subject:     st.Change.Subject,
		Status:      sqlc.ChangeStatus(st.Change.Status),
		ProjectName: st.Change.ProjectName,
		OwnerName:   st.Change.OwnerName,
		Branch:      st.Change.Branch,
		Stages:      stagesJSON,
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert change %s: %w", st.Change.Key(), err)
	}
	return nil
}

// GetByProject returns the project's rows ordered by change number
func (s *Store) GetByProject(ctx context.Context, projectName string) ([]store.Record, error) {
	ctx, span := s.startSpan(ctx, "db.GetByProject",
		trace.WithAttributes(otel.AttrProjectName.String(projectName)),
	)
	defer span.End()

	rows, err := s.queries.ListChangesByProject(ctx, projectName)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list changes of project %s: %w", projectName, err)
	}

	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
		records = append(records, rec)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(records)))
	return records, nil
}

// PruneProject deletes the project's rows whose number is not in keep
func (s *Store) PruneProject(ctx context.Context, projectName string, keep []int64) (int64, error) {
	ctx, span := s.startSpan(ctx, "db.PruneProject",
		trace.WithAttributes(otel.AttrProjectName.String(projectName)),
	)
	defer span.End()

	if keep == nil {
		keep = []int64{}
	}
	deleted, err := s.queries.DeleteProjectChangesExcept(ctx, sqlc.DeleteProjectChangesExceptParams{
		ProjectName: projectName,
		KeepNumbers: keep,
	})
	if err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to prune changes of project %s: %w", projectName, err)
	}
	span.SetAttributes(otel.AttrResultCount.Int64(deleted))
	return deleted, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SaveStatus upserts the sync status of a project
func (s *Store) SaveStatus(ctx context.Context, projectName string, st *status.ProjectSyncStatus) error {
	ctx, span := s.startSpan(ctx, "db.SaveStatus",
		trace.WithAttributes(otel.AttrProjectName.String(projectName)),
	)
	defer span.End()

	err := s.queries.UpsertProjectSync(ctx, sqlc.UpsertProjectSyncParams{
		ProjectName:  projectName,
		Phase:        sqlc.SyncPhase(st.Phase),
		Message:      st.Message,
		LastAttempt:  pgtypes.Timestamptz(st.LastAttempt),
		AttemptCount: clampInt32(st.AttemptCount),
		LastSyncTime: pgtypes.Timestamptz(st.LastSyncTime),
		ChangeCount:  clampInt32(st.ChangeCount),
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save sync status of project %s: %w", projectName, err)
	}
	return nil
}

// LoadStatus returns the sync status of a project, empty when never synced
func (s *Store) LoadStatus(ctx context.Context, projectName string) (*status.ProjectSyncStatus, error) {
	ctx, span := s.startSpan(ctx, "db.LoadStatus",
		trace.WithAttributes(otel.AttrProjectName.String(projectName)),
	)
	defer span.End()

	row, err := s.queries.GetProjectSync(ctx, projectName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &status.ProjectSyncStatus{}, nil
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load sync status of project %s: %w", projectName, err)
	}
	return toSyncStatus(row), nil
}

// LoadAllStatus returns the sync status of every project
func (s *Store) LoadAllStatus(ctx context.Context) (map[string]*status.ProjectSyncStatus, error) {
	ctx, span := s.startSpan(ctx, "db.LoadAllStatus")
	defer span.End()

	rows, err := s.queries.ListProjectSyncs(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list sync status: %w", err)
	}

	result := make(map[string]*status.ProjectSyncStatus, len(rows))
	for _, row := range rows {
		result[row.ProjectName] = toSyncStatus(row)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

func toRecord(row sqlc.Change) (store.Record, error) {
	var stages []pipeline.StageState
	if err := json.Unmarshal(row.Stages, &stages); err != nil {
		return store.Record{}, fmt.Errorf("failed to decode stages of change %s/%d: %w", row.ProjectName, row.Number, err)
	}
	if stages == nil {
		stages = []pipeline.StageState{}
	}

	return store.Record{
		ID: row.ID,
		Change: pipeline.ChangeInfo{
			Number:      row.Number,
			Subject:     row.Subject,
			Status:      pipeline.ChangeStatus(row.Status),
			Branch:      row.Branch,
			ProjectName: row.ProjectName,
			OwnerName:   row.OwnerName,
		},
		Stages:    stages,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func toSyncStatus(row sqlc.ProjectSync) *status.ProjectSyncStatus {
	return &status.ProjectSyncStatus{
		Phase:        status.SyncPhase(row.Phase),
		Message:      row.Message,
		LastAttempt:  pgtypes.TimePtr(row.LastAttempt),
		AttemptCount: int(row.AttemptCount),
		LastSyncTime: pgtypes.TimePtr(row.LastSyncTime),
		ChangeCount:  int(row.ChangeCount),
	}
}

func clampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < 0 {
		return 0
	}
	return int32(v)
}
