package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store"
	"github.com/stacklok/pipeline-tracker/internal/store/inmemory"
)

// MemoryFactory creates the in-process change store. Project sync status can
// optionally be persisted as files so it survives restarts.
type MemoryFactory struct {
	config *config.Config
	store  *inmemory.Store
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a new memory storage factory
func NewMemoryFactory(cfg *config.Config) (*MemoryFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var opts []inmemory.Option
	if cfg.Storage != nil && cfg.Storage.StatusDir != "" {
		statusDir := cfg.Storage.StatusDir
		if err := os.MkdirAll(statusDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create status directory %s: %w", statusDir, err)
		}
		opts = append(opts, inmemory.WithStatusPersistence(status.NewFileStatusPersistence(statusDir)))
		slog.Info("Creating memory storage factory", "status_dir", statusDir)
	} else {
		slog.Info("Creating memory storage factory")
	}

	return &MemoryFactory{
		config: cfg,
		store:  inmemory.New(opts...),
	}, nil
}

// CreateStore returns the shared in-memory store. Every call returns the same
// instance so the reconciliation task and the query service see the same rows.
func (m *MemoryFactory) CreateStore(_ context.Context) (store.Store, error) {
	return m.store, nil
}

// Cleanup is a no-op for memory storage
func (*MemoryFactory) Cleanup() {}
