package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pipeline-tracker/internal/config"
	pkgsync "github.com/stacklok/pipeline-tracker/internal/sync"
	"github.com/stacklok/pipeline-tracker/internal/telemetry"
)

// ErrAlreadyStarted is returned when Start is called more than once
var ErrAlreadyStarted = errors.New("coordinator already started")

// Coordinator schedules reconciliation passes in the background
type Coordinator interface {
	// Start runs an initial pass and then one pass per interval.
	// Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels the schedule and waits for an in-flight pass to return
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager  pkgsync.Manager
	schedule schedule

	tracer  trace.Tracer
	metrics *telemetry.ReconcileMetrics

	// wakeups requests an early pass; nil never fires
	wakeups <-chan struct{}

	// Lifecycle management
	started    atomic.Bool
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}

	// Overlap prevention
	running atomic.Bool
	runs    sync.WaitGroup
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithReconcileMetrics sets the reconciliation metrics for the coordinator
func WithReconcileMetrics(metrics *telemetry.ReconcileMetrics) Option {
	return func(c *defaultCoordinator) {
		c.metrics = metrics
	}
}

// WithTracer sets the tracer used for run spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultCoordinator) {
		c.tracer = tracer
	}
}

// WithWakeups starts an extra pass whenever ch receives.
// The overlap rule still applies, so a wakeup during a pass is dropped.
func WithWakeups(ch <-chan struct{}) Option {
	return func(c *defaultCoordinator) {
		c.wakeups = ch
	}
}

// New creates a new coordinator with injected dependencies
func New(manager pkgsync.Manager, cfg *config.Config, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		manager:  manager,
		schedule: scheduleFromConfig(cfg),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins the reconciliation schedule
func (c *defaultCoordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	slog.Info("Starting reconciliation coordinator",
		"interval", c.schedule.interval,
		"timeout", c.schedule.timeout)

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		c.runs.Wait()
		close(c.done)
		slog.Info("Reconciliation coordinator shut down")
	}()

	ticker := time.NewTicker(c.schedule.interval)
	defer ticker.Stop()

	// Initial pass
	c.trigger(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.trigger(coordCtx)
		case <-c.wakeups:
			slog.Info("Catalog changed, starting an early reconciliation pass")
			c.trigger(coordCtx)
			ticker.Reset(c.schedule.interval)
		case <-coordCtx.Done():
			slog.Info("Reconciliation coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping reconciliation coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// trigger starts a pass unless one is still in flight, in which case the tick is dropped
func (c *defaultCoordinator) trigger(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		slog.Warn("Previous reconciliation pass still running, skipping tick")
		c.metrics.RecordSkippedRun(ctx)
		return
	}

	c.runs.Add(1)
	go func() {
		defer c.runs.Done()
		defer c.running.Store(false)
		c.runOnce(ctx)
	}()
}
