package catalog

import (
	"context"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

const (
	// EntityLabel marks ConfigMaps that carry a catalog entity
	EntityLabel = "pipelines.stacklok.dev/entity"
	// EntityDataKey is the ConfigMap key holding the entity document
	EntityDataKey = "entity.yaml"
)

// KubernetesCatalog reads entities from labelled ConfigMaps
type KubernetesCatalog struct {
	client    client.Reader
	namespace string
	selector  labels.Selector
}

var _ Catalog = (*KubernetesCatalog)(nil)

// NewKubernetesCatalog creates a catalog over ConfigMaps in namespace (all
// namespaces when empty). An empty selector defaults to EntityLabel=true.
func NewKubernetesCatalog(c client.Reader, namespace, selector string) (*KubernetesCatalog, error) {
	if c == nil {
		return nil, fmt.Errorf("kubernetes client is required")
	}
	if selector == "" {
		selector = EntityLabel + "=true"
	}
	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid label selector %q: %w", selector, err)
	}
	return &KubernetesCatalog{
		client:    c,
		namespace: namespace,
		selector:  sel,
	}, nil
}

func (k *KubernetesCatalog) load(ctx context.Context) ([]Entity, error) {
	var list corev1.ConfigMapList
	opts := []client.ListOption{client.MatchingLabelsSelector{Selector: k.selector}}
	if k.namespace != "" {
		opts = append(opts, client.InNamespace(k.namespace))
	}
	if err := k.client.List(ctx, &list, opts...); err != nil {
		return nil, fmt.Errorf("%w: failed to list ConfigMaps: %v", pipeline.ErrCatalogUnavailable, err)
	}

	entities := make([]Entity, 0, len(list.Items))
	for _, cm := range list.Items {
		data, ok := cm.Data[EntityDataKey]
		if !ok {
			slog.Warn("ConfigMap has no entity document", "namespace", cm.Namespace, "name", cm.Name, "key", EntityDataKey)
			continue
		}
		entity, err := DecodeEntity([]byte(data))
		if err != nil {
			slog.Warn("Skipping invalid entity ConfigMap", "namespace", cm.Namespace, "name", cm.Name, "error", err)
			continue
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

// GetEntityByRef returns the entity identified by ref
func (k *KubernetesCatalog) GetEntityByRef(ctx context.Context, ref EntityRef) (*Entity, error) {
	entities, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	if e := findEntity(entities, ref); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", pipeline.ErrEntityNotFound, ref)
}

// ListEntities returns all entities matching filter
func (k *KubernetesCatalog) ListEntities(ctx context.Context, filter Filter) ([]Entity, error) {
	entities, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(entities, filter), nil
}
