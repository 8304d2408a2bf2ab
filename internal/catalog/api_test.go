package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/httpclient/mocks"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

const demoEntityJSON = `{
  "apiVersion": "backstage.io/v1alpha1",
  "kind": "Component",
  "metadata": {"name": "demo", "annotations": {"backstage.io/gerrit-project": "demo"}},
  "spec": {"stages": [{"type": "jenkins", "name": "build", "host": "https://jenkins.example.com"}]}
}`

func TestNewAPICatalog(t *testing.T) {
	t.Parallel()

	_, err := NewAPICatalog("", httpclient.NewDefaultClient(0))
	require.Error(t, err)

	_, err = NewAPICatalog("https://backstage.example.com/api/catalog", nil)
	require.Error(t, err)
}

func TestAPICatalog_GetEntityByRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      []byte
		err       error
		wantErr   error
		wantName  string
		wantStage int
	}{
		{
			name:      "found",
			body:      []byte(demoEntityJSON),
			wantName:  "demo",
			wantStage: 1,
		},
		{
			name:    "not found maps to entity not found",
			err:     httpclient.NewHTTPError(404, "u", "Not Found"),
			wantErr: pipeline.ErrEntityNotFound,
		},
		{
			name:    "server error maps to catalog unavailable",
			err:     httpclient.NewHTTPError(500, "u", "boom"),
			wantErr: pipeline.ErrCatalogUnavailable,
		},
		{
			name:    "transport error maps to catalog unavailable",
			err:     errors.New("connection refused"),
			wantErr: pipeline.ErrCatalogUnavailable,
		},
		{
			name:    "garbage body maps to catalog unavailable",
			body:    []byte("<html>"),
			wantErr: pipeline.ErrCatalogUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			client.EXPECT().
				Get(gomock.Any(), "https://backstage.example.com/api/catalog/entities/by-name/component/default/demo").
				Return(tt.body, tt.err)

			cat, err := NewAPICatalog("https://backstage.example.com/api/catalog/", client)
			require.NoError(t, err)

			e, err := cat.GetEntityByRef(context.Background(), NewEntityRef("Component", "", "demo"))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, e.Metadata.Name)
			assert.Len(t, e.Stages(), tt.wantStage)
		})
	}
}

func TestAPICatalog_ListEntities(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "https://backstage.example.com/api/catalog/entities?filter=kind%3Dcomponent").
		Return([]byte(`[`+demoEntityJSON+`, {"apiVersion":"v1","kind":"Component","metadata":{"name":"docs"}}]`), nil)

	cat, err := NewAPICatalog("https://backstage.example.com/api/catalog", client)
	require.NoError(t, err)

	entities, err := cat.ListEntities(context.Background(), Filter{Kind: "component", WithStages: true})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "demo", entities[0].Metadata.Name)
}

func TestAPICatalog_ListEntities_Unavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, httpclient.NewHTTPError(503, "u", "down"))

	cat, err := NewAPICatalog("https://backstage.example.com/api/catalog", client)
	require.NoError(t, err)

	_, err = cat.ListEntities(context.Background(), Filter{})
	require.ErrorIs(t, err, pipeline.ErrCatalogUnavailable)
}
