// Package storage creates the change store selected by the configuration.
// It is the single place that decides between PostgreSQL and in-memory storage.
package storage

import (
	"context"
	"fmt"

	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/store"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the change store and owns the resources behind it.
type Factory interface {
	// CreateStore returns the store used by both the reconciliation task and
	// the query service. Both backends also implement store.Pruner.
	CreateStore(ctx context.Context) (store.Store, error)

	// Cleanup releases any resources held by this factory.
	// For database factories, this closes the connection pool.
	// For memory factories, this is a no-op.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type.
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeMemory:
		return NewMemoryFactory(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
