package resolver

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// NewRegistryFromConfig builds a registry with one resolver per configured stage type
func NewRegistryFromConfig(cfg config.ResolversConfig) (*Registry, error) {
	var opts []RegistryOption
	for _, t := range pipeline.StageTypes {
		rc := cfg.For(t)
		if rc == nil {
			slog.Debug("No resolver configured, stage reports un-entered", "stage_type", t)
			continue
		}

		res, err := newResolver(rc)
		if err != nil {
			return nil, fmt.Errorf("resolver %s: %w", t, err)
		}
		opts = append(opts, WithResolver(t, res))
		slog.Info("Configured stage resolver", "stage_type", t, "resolver_type", rc.Type)
	}
	return NewRegistry(opts...), nil
}

func newResolver(rc *config.ResolverConfig) (Resolver, error) {
	switch rc.Type {
	case config.ResolverTypeHTTP:
		client := httpclient.NewDefaultClient(config.ParseTimeout(rc.Timeout))
		return NewHTTPResolver(client, rc.StatusPath, rc.StateField, rc.States)
	case config.ResolverTypeStatic:
		return NewStaticResolver(rc.Status), nil
	default:
		return nil, fmt.Errorf("unknown resolver type %q", rc.Type)
	}
}
