package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// APICatalog reads entities from a Backstage catalog REST API
type APICatalog struct {
	baseURL string
	client  httpclient.Client
}

var _ Catalog = (*APICatalog)(nil)

// NewAPICatalog creates a catalog client rooted at baseURL, e.g.
// "https://backstage.example.com/api/catalog"
func NewAPICatalog(baseURL string, client httpclient.Client) (*APICatalog, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &APICatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}, nil
}

// GetEntityByRef fetches /entities/by-name/{kind}/{namespace}/{name}
func (a *APICatalog) GetEntityByRef(ctx context.Context, ref EntityRef) (*Entity, error) {
	endpoint := fmt.Sprintf("%s/entities/by-name/%s/%s/%s",
		a.baseURL,
		url.PathEscape(ref.Kind),
		url.PathEscape(ref.namespace()),
		url.PathEscape(ref.Name),
	)

	body, err := a.client.Get(ctx, endpoint)
	if httpclient.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrEntityNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrCatalogUnavailable, err)
	}

	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, fmt.Errorf("%w: failed to decode entity %s: %v", pipeline.ErrCatalogUnavailable, ref, err)
	}
	return &entity, nil
}

// ListEntities fetches /entities, narrowing by kind on the server when set
func (a *APICatalog) ListEntities(ctx context.Context, filter Filter) ([]Entity, error) {
	endpoint := a.baseURL + "/entities"
	if filter.Kind != "" {
		endpoint += "?filter=" + url.QueryEscape("kind="+filter.Kind)
	}

	body, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrCatalogUnavailable, err)
	}

	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("%w: failed to decode entity list: %v", pipeline.ErrCatalogUnavailable, err)
	}
	return applyFilter(entities, filter), nil
}
