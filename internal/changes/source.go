// Package changes lists open code review changes from an upstream
// change-tracking service.
package changes

import (
	"context"
	"log/slog"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=source.go Source

// Source lists the open changes of a project
type Source interface {
	// ListOpenChanges returns the open changes of project.
	// Failures wrap pipeline.ErrUpstreamUnavailable or pipeline.ErrUpstreamProtocol.
	ListOpenChanges(ctx context.Context, project string) ([]pipeline.ChangeInfo, error)
}

// ForEntity lists the open changes of the project an entity is annotated with.
// Entities without the project annotation have no changes and the source is not called.
func ForEntity(ctx context.Context, src Source, entity *catalog.Entity) ([]pipeline.ChangeInfo, error) {
	project, ok := entity.ProjectName()
	if !ok {
		slog.Debug("Entity has no project annotation", "entity", entity.Ref().String())
		return []pipeline.ChangeInfo{}, nil
	}
	return src.ListOpenChanges(ctx, project)
}
