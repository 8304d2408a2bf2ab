package app

import (
	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/service"
	"github.com/stacklok/pipeline-tracker/internal/store"
	"github.com/stacklok/pipeline-tracker/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator runs the periodic reconciliation task
	SyncCoordinator coordinator.Coordinator

	// QueryService answers history and status queries
	QueryService service.QueryService

	// Store is shared by the reconciliation task and the query service
	Store store.Store

	// CatalogWatcher signals file catalog changes; nil unless watching is enabled
	CatalogWatcher *catalog.FileWatcher
}
