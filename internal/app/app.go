// Package app provides application lifecycle management for the pipeline tracker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/pipeline-tracker/internal/config"
)

// PipelineTrackerApp runs the reconciliation task next to the query API.
// It owns the lifecycle of both and shuts them down in order.
type PipelineTrackerApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the reconciliation task in the background and serves HTTP.
// It blocks until the HTTP server stops or fails.
func (app *PipelineTrackerApp) Start() error {
	if w := app.components.CatalogWatcher; w != nil {
		go func() {
			if err := w.Watch(app.ctx); err != nil {
				slog.Error("Catalog watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		if err := app.components.SyncCoordinator.Start(app.ctx); err != nil {
			slog.Error("Reconciliation task failed", "error", err)
		}
	}()

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop stops the reconciliation task, then shuts down the HTTP server within timeout
func (app *PipelineTrackerApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.SyncCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop reconciliation task", "error", err)
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *PipelineTrackerApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *PipelineTrackerApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
