// Package catalog provides access to the software catalog that declares which
// projects are tracked and which pipeline stages they run through.
package catalog

import (
	"context"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// ProjectAnnotation names the upstream project an entity's changes are read from
const ProjectAnnotation = "backstage.io/gerrit-project"

//go:generate mockgen -destination=mocks/mock_catalog.go -package=mocks -source=catalog.go Catalog

// Catalog resolves and lists catalog entities
type Catalog interface {
	// GetEntityByRef returns the entity identified by ref.
	// Returns an error wrapping pipeline.ErrEntityNotFound when it does not exist.
	GetEntityByRef(ctx context.Context, ref EntityRef) (*Entity, error)

	// ListEntities returns all entities matching filter.
	// Returns an error wrapping pipeline.ErrCatalogUnavailable on backend failure.
	ListEntities(ctx context.Context, filter Filter) ([]Entity, error)
}

// Entity is a catalog entry in Backstage descriptor format
type Entity struct {
	APIVersion string         `json:"apiVersion"`
	Kind       string         `json:"kind"`
	Metadata   EntityMetadata `json:"metadata"`
	Spec       EntitySpec     `json:"spec"`
}

// EntityMetadata holds the identifying fields of an entity
type EntityMetadata struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Title       string            `json:"title,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

// EntitySpec holds the pipeline configuration of an entity
type EntitySpec struct {
	Stages []pipeline.Stage `json:"stages,omitempty"`
}

// Ref returns the reference that identifies the entity
func (e *Entity) Ref() EntityRef {
	return NewEntityRef(e.Kind, e.Metadata.Namespace, e.Metadata.Name)
}

// ProjectName returns the value of ProjectAnnotation, if set
func (e *Entity) ProjectName() (string, bool) {
	name, ok := e.Metadata.Annotations[ProjectAnnotation]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Stages returns the configured pipeline stages in order
func (e *Entity) Stages() []pipeline.Stage {
	return e.Spec.Stages
}

// Filter narrows ListEntities results
type Filter struct {
	// Kind matches entities of this kind, case-insensitively. Empty matches all.
	Kind string

	// WithStages matches only entities declaring at least one stage
	WithStages bool
}

// Matches reports whether the entity satisfies the filter
func (f Filter) Matches(e *Entity) bool {
	if f.Kind != "" && normalizeKind(f.Kind) != normalizeKind(e.Kind) {
		return false
	}
	if f.WithStages && len(e.Spec.Stages) == 0 {
		return false
	}
	return true
}

func applyFilter(entities []Entity, filter Filter) []Entity {
	out := make([]Entity, 0, len(entities))
	for i := range entities {
		if filter.Matches(&entities[i]) {
			out = append(out, entities[i])
		}
	}
	return out
}

func findEntity(entities []Entity, ref EntityRef) *Entity {
	for i := range entities {
		if entities[i].Ref().Equal(ref) {
			return &entities[i]
		}
	}
	return nil
}
