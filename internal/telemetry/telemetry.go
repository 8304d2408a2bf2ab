package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the tracer and meter providers of the process
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	registry       *prometheus.Registry
	shutdown       []func(context.Context) error
}

// Option configures New
type Option func(*options)

type options struct {
	config *Config
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// New builds the providers described by the configuration. Without a
// configuration, or with telemetry disabled, both providers are no-ops.
// Callers must call Shutdown to flush pending data.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.config
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	t := &Telemetry{}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if t.tracerProvider, err = newTracerProvider(ctx, cfg, res); err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	if s, ok := t.tracerProvider.(shutdowner); ok {
		t.shutdown = append(t.shutdown, s.Shutdown)
	}

	if cfg.prometheusEnabled() {
		t.registry = prometheus.NewRegistry()
	}
	var registerer prometheus.Registerer
	if t.registry != nil {
		registerer = t.registry
	}
	if t.meterProvider, err = newMeterProvider(ctx, cfg, res, registerer); err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}
	if s, ok := t.meterProvider.(shutdowner); ok {
		t.shutdown = append(t.shutdown, s.Shutdown)
	}

	if cfg.Enabled {
		slog.Info("Telemetry initialized",
			"service_name", cfg.GetServiceName(),
			"service_version", cfg.GetServiceVersion(),
		)
	}
	return t, nil
}

// TracerProvider returns the tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// MetricsHandler returns the Prometheus scrape handler, nil unless Prometheus export is on
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the SDK providers. It is safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdown = nil
	if len(errs) > 0 {
		return fmt.Errorf("failed to shut down telemetry: %w", errors.Join(errs...))
	}
	return nil
}
