package kubernetes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/rest"
)

func TestReadNamespaceFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantNS  string
		wantErr bool
	}{
		{
			name:    "valid namespace",
			content: "pipelines",
			wantNS:  "pipelines",
		},
		{
			name:    "namespace with surrounding whitespace",
			content: "  pipelines  \n",
			wantNS:  "pipelines",
		},
		{
			name:    "content exceeding 256 bytes returns error",
			content: strings.Repeat("b", 300),
			wantErr: true,
		},
		{
			name:    "invalid label returns error",
			content: "Not_A_Namespace",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpFile := filepath.Join(t.TempDir(), "namespace")
			require.NoError(t, os.WriteFile(tmpFile, []byte(tt.content), 0o600))

			got, err := readNamespaceFromFile(tmpFile)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNS, got)
		})
	}

	t.Run("file does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := readNamespaceFromFile("/nonexistent/path/namespace")
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := &clientOptions{}
	require.NoError(t, WithNamespace("team-a")(o))
	assert.Equal(t, "team-a", o.namespace)

	require.Error(t, WithNamespace("")(o))
	require.Error(t, WithNamespace("UPPER")(o))
	require.Error(t, WithRESTConfig(nil)(o))

	require.NoError(t, WithCurrentNamespace()(o))
	assert.True(t, o.current)
}

func TestNewCatalogClient(t *testing.T) {
	t.Parallel()

	c, err := NewCatalogClient(context.Background(),
		WithRESTConfig(&rest.Config{Host: "http://127.0.0.1:1"}),
		WithNamespace("team-a"),
	)
	require.NoError(t, err)
	assert.Equal(t, "team-a", c.Namespace)
	assert.NotNil(t, c.Reader)

	_, err = NewCatalogClient(context.Background(), WithNamespace("bad_ns"))
	require.Error(t, err)
}
