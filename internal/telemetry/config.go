// Package telemetry wires OpenTelemetry tracing and metrics for the pipeline
// tracker: OTLP/HTTP exporters, an optional Prometheus scrape registry, HTTP
// server instrumentation and the reconciliation instruments.
package telemetry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultServiceName identifies the tracker in traces and metrics
	DefaultServiceName = "pipeline-tracker"

	// DefaultEndpoint is the OTLP/HTTP collector address
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling samples 5% of traces
	DefaultSampling = 0.05

	// DefaultExportInterval is how often metrics are pushed over OTLP
	DefaultExportInterval = 60 * time.Second
)

// Config is the telemetry section of the tracker configuration
type Config struct {
	// Enabled turns telemetry on. When false every provider is a no-op.
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to DefaultServiceName
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to "unknown"
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the collector "host:port"; /v1/traces and /v1/metrics are appended by the exporters
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends telemetry over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of traces kept, in [0, 1]. Zero means DefaultSampling.
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Prometheus serves the metrics on /metrics
	Prometheus bool `yaml:"prometheus,omitempty"`

	// DisableOTLP stops pushing metrics to the collector
	DisableOTLP bool `yaml:"disableOTLP,omitempty"`
}

// GetServiceName returns the configured service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the configured service version or "unknown"
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the configured endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// tracingEnabled reports whether spans should be exported
func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

// metricsEnabled reports whether any metric reader should be installed
func (c *Config) metricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

// prometheusEnabled reports whether the scrape registry should be created
func (c *Config) prometheusEnabled() bool {
	return c.metricsEnabled() && c.Metrics.Prometheus
}

// GetSampling returns the sampling ratio. An explicit 0 cannot be told apart
// from an unset value in YAML, so it maps to DefaultSampling.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0 {
		return DefaultSampling
	}
	return c.Sampling
}

// Validate checks the settings that apply when telemetry is enabled.
// A nil or disabled config is always valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if t := c.Tracing; t != nil && t.Enabled && (t.Sampling < 0 || t.Sampling > 1) {
		errs = append(errs, fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %f", t.Sampling))
	}
	if m := c.Metrics; m != nil && m.Enabled && m.DisableOTLP && !m.Prometheus {
		errs = append(errs, fmt.Errorf("metrics: at least one of OTLP or Prometheus export must be enabled"))
	}
	return errors.Join(errs...)
}
