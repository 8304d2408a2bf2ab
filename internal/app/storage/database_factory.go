package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/db"
	"github.com/stacklok/pipeline-tracker/internal/store"
	storedb "github.com/stacklok/pipeline-tracker/internal/store/db"
)

// DatabaseFactory creates the PostgreSQL-backed change store
type DatabaseFactory struct {
	config *config.Config
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the OpenTelemetry tracer for the database store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// NewDatabaseFactory creates a new database-backed storage factory.
// It waits for the configured PostgreSQL database to accept connections.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory")

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	factory := &DatabaseFactory{
		config: cfg,
		pool:   pool,
	}

	for _, opt := range opts {
		opt(factory)
	}

	return factory, nil
}

// CreateStore creates the database-backed change store
func (d *DatabaseFactory) CreateStore(_ context.Context) (store.Store, error) {
	slog.Debug("Creating database-backed change store")

	opts := []storedb.Option{
		storedb.WithConnectionPool(d.pool),
	}
	if d.tracer != nil {
		opts = append(opts, storedb.WithTracer(d.tracer))
		slog.Debug("Database store tracing enabled")
	}

	return storedb.New(opts...)
}

// Cleanup closes the database connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
