// Package service provides the read side of the pipeline tracker: change
// history per catalog entity and the per-project reconciliation status.
package service

import (
	"context"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
)

// ErrProjectNotFound is returned when no reconciliation status exists for a project
var ErrProjectNotFound = pipeline.ErrProjectNotFound

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go QueryService

// QueryService answers history and status queries from the store
type QueryService interface {
	// CheckReadiness checks if the store is reachable
	CheckReadiness(ctx context.Context) error

	// GetHistory returns the tracked changes of the entity's project.
	// Returns an empty list when the entity has no project annotation and an
	// error wrapping pipeline.ErrEntityNotFound when ref cannot be resolved.
	GetHistory(ctx context.Context, ref catalog.EntityRef) ([]pipeline.ChangePipelineStatus, error)

	// ListSyncStatuses returns the reconciliation status of every project
	ListSyncStatuses(ctx context.Context) (map[string]*status.ProjectSyncStatus, error)

	// GetSyncStatus returns the reconciliation status of one project
	GetSyncStatus(ctx context.Context, projectName string) (*status.ProjectSyncStatus, error)
}
