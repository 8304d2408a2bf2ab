// Package store defines persistence of change pipeline snapshots and project
// sync status.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store Pruner

// Record is a persisted change snapshot. The current stage is not stored;
// readers derive it from Stages.
type Record struct {
	ID        uuid.UUID
	Change    pipeline.ChangeInfo
	Stages    []pipeline.StageState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PipelineStatus rebuilds the pipeline status of the record, deriving the
// current stage from the persisted stages.
func (r Record) PipelineStatus() pipeline.ChangePipelineStatus {
	return pipeline.NewChangePipelineStatus(r.Change, r.Stages)
}

// Store persists one row per (project name, change number)
type Store interface {
	status.StatusPersistence

	// Upsert inserts or replaces the snapshot of a change. New rows get a
	// fresh id; existing rows keep theirs. Each call is atomic for its key.
	Upsert(ctx context.Context, st pipeline.ChangePipelineStatus) error

	// GetByProject returns every stored change of a project ordered by number
	GetByProject(ctx context.Context, projectName string) ([]Record, error)

	// Ping reports whether the store can serve requests
	Ping(ctx context.Context) error
}

// Pruner removes rows of changes that are no longer open
type Pruner interface {
	// PruneProject deletes the project's rows whose number is not in keep and
	// returns how many were deleted.
	PruneProject(ctx context.Context, projectName string, keep []int64) (int64, error)
}
