// Package db builds the PostgreSQL connection pool used by the change store.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/db/auth"
)

// Pinger is the subset of a pool needed to verify connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPool creates a connection pool and waits for the database to accept
// connections, retrying with exponential backoff for up to the configured
// connect timeout.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	poolConfig, err := buildPoolConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := WaitForDatabase(ctx, pool, cfg.GetConnectTimeout()); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("Database connection pool created",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"dynamic_auth", cfg.UsesDynamicAuth(),
	)
	return pool, nil
}

// WaitForDatabase pings until it succeeds or maxElapsed passes
func WaitForDatabase(ctx context.Context, p Pinger, maxElapsed time.Duration) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := p.Ping(ctx); err != nil {
			slog.Warn("Database not ready", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if err != nil {
		return fmt.Errorf("database not reachable after %d attempts: %w", attempt, err)
	}
	return nil
}

func buildPoolConfig(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	var connStr string
	if cfg.UsesDynamicAuth() {
		// the password is filled in per connection by the BeforeConnect hook
		connStr = cfg.BuildConnectionString("")
	} else {
		var err error
		connStr, err = cfg.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to build connection string: %w", err)
		}
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.UsesDynamicAuth() {
		beforeConnect, err := auth.NewBeforeConnect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up dynamic database auth: %w", err)
		}
		poolConfig.BeforeConnect = beforeConnect
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connMaxLifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = lifetime
	}

	return poolConfig, nil
}
