// Package resolver determines the status of a change within a pipeline stage.
package resolver

import (
	"context"
	"fmt"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks -source=resolver.go Resolver

// Resolver asks a stage's backing system for a change's status
type Resolver interface {
	Resolve(ctx context.Context, stage pipeline.Stage, change pipeline.ChangeInfo) (pipeline.StageStatus, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, stage pipeline.Stage, change pipeline.ChangeInfo) (pipeline.StageStatus, error)

// Resolve calls f
func (f ResolverFunc) Resolve(
	ctx context.Context, stage pipeline.Stage, change pipeline.ChangeInfo,
) (pipeline.StageStatus, error) {
	return f(ctx, stage, change)
}

// Registry dispatches on stage type. Each supported type has exactly one
// resolver; types without one resolve as un-entered.
type Registry struct {
	jenkins   Resolver
	gerrit    Resolver
	spinnaker Resolver
}

var _ Resolver = (*Registry)(nil)

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithResolver sets the resolver for a stage type. Unknown types are ignored.
func WithResolver(t pipeline.StageType, r Resolver) RegistryOption {
	return func(reg *Registry) {
		switch t {
		case pipeline.StageTypeJenkins:
			reg.jenkins = r
		case pipeline.StageTypeGerrit:
			reg.gerrit = r
		case pipeline.StageTypeSpinnaker:
			reg.spinnaker = r
		}
	}
}

// NewRegistry creates a registry; stage types left unset report un-entered
func NewRegistry(opts ...RegistryOption) *Registry {
	unentered := NewStaticResolver(pipeline.StatusUnEntered)
	reg := &Registry{
		jenkins:   unentered,
		gerrit:    unentered,
		spinnaker: unentered,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// For returns the resolver registered for t
func (r *Registry) For(t pipeline.StageType) (Resolver, error) {
	var res Resolver
	switch t {
	case pipeline.StageTypeJenkins:
		res = r.jenkins
	case pipeline.StageTypeGerrit:
		res = r.gerrit
	case pipeline.StageTypeSpinnaker:
		res = r.spinnaker
	default:
		return nil, fmt.Errorf("%w: %q", pipeline.ErrUnknownStageType, t)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no resolver registered for %q", pipeline.ErrUnknownStageType, t)
	}
	return res, nil
}

// Resolve dispatches to the resolver registered for stage.Type
func (r *Registry) Resolve(
	ctx context.Context, stage pipeline.Stage, change pipeline.ChangeInfo,
) (pipeline.StageStatus, error) {
	res, err := r.For(stage.Type)
	if err != nil {
		return pipeline.StageStatus{}, err
	}
	return res.Resolve(ctx, stage, change)
}

// StaticResolver reports the same status for every change
type StaticResolver struct {
	status pipeline.StageStatus
}

// NewStaticResolver creates a resolver that always reports status
func NewStaticResolver(status pipeline.StatusType) *StaticResolver {
	return &StaticResolver{status: pipeline.Status(status)}
}

// Resolve returns the configured status
func (s *StaticResolver) Resolve(context.Context, pipeline.Stage, pipeline.ChangeInfo) (pipeline.StageStatus, error) {
	return s.status, nil
}
