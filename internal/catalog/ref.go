package catalog

import (
	"fmt"
	"strings"
)

// DefaultNamespace is used for entities and references without a namespace
const DefaultNamespace = "default"

// EntityRef identifies a catalog entity
type EntityRef struct {
	Kind      string
	Namespace string
	Name      string
}

// NewEntityRef builds a normalized reference
func NewEntityRef(kind, namespace, name string) EntityRef {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return EntityRef{
		Kind:      normalizeKind(kind),
		Namespace: namespace,
		Name:      name,
	}
}

// ParseEntityRef parses "kind:name", "kind:namespace/name", "kind/name" or
// "kind/namespace/name".
func ParseEntityRef(s string) (EntityRef, error) {
	var kind, rest string
	if k, r, ok := strings.Cut(s, ":"); ok {
		kind, rest = k, r
	} else if k, r, ok := strings.Cut(s, "/"); ok {
		kind, rest = k, r
	} else {
		return EntityRef{}, fmt.Errorf("invalid entity reference %q: missing kind", s)
	}

	namespace, name, ok := strings.Cut(rest, "/")
	if !ok {
		namespace, name = "", rest
	}
	if kind == "" || name == "" || strings.Contains(name, "/") {
		return EntityRef{}, fmt.Errorf("invalid entity reference %q", s)
	}
	return NewEntityRef(kind, namespace, name), nil
}

// String formats the reference as "kind:namespace/name"
func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Kind, r.Namespace, r.Name)
}

// Equal compares two references, ignoring kind case
func (r EntityRef) Equal(other EntityRef) bool {
	return normalizeKind(r.Kind) == normalizeKind(other.Kind) &&
		r.namespace() == other.namespace() &&
		r.Name == other.Name
}

func (r EntityRef) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}
	return r.Namespace
}

func normalizeKind(kind string) string {
	return strings.ToLower(kind)
}
