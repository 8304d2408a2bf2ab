package changes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

func newGitLabServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func TestGitLabSource_ListOpenChanges(t *testing.T) {
	t.Parallel()

	server := newGitLabServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/merge_requests") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "opened", r.URL.Query().Get("state"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("X-Next-Page", "2")
			_, _ = fmt.Fprint(w, `[{"iid": 12, "title": "Add feature", "state": "opened", "target_branch": "main",
				"author": {"name": "Jane Roe", "username": "jroe"}}]`)
		default:
			_, _ = fmt.Fprint(w, `[{"iid": 13, "title": "Fix bug", "state": "opened", "target_branch": "main",
				"author": {"username": "bot"}}]`)
		}
	})

	src, err := NewGitLabSource(server.URL, "token")
	require.NoError(t, err)

	changes, err := src.ListOpenChanges(context.Background(), "group/service")
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, pipeline.ChangeInfo{
		Number:      12,
		Subject:     "Add feature",
		Status:      pipeline.ChangeStatusNew,
		Branch:      "main",
		ProjectName: "group/service",
		OwnerName:   "Jane Roe",
	}, changes[0])
	assert.Equal(t, "bot", changes[1].OwnerName)
}

func TestGitLabSource_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unknown project", status: http.StatusNotFound, body: `{"message": "404 Project Not Found"}`, wantErr: pipeline.ErrUpstreamUnavailable},
		{name: "forbidden", status: http.StatusForbidden, body: `{"message": "403 Forbidden"}`, wantErr: pipeline.ErrUpstreamUnavailable},
		{name: "wrong field type", status: http.StatusOK, body: `[{"iid": "twelve"}]`, wantErr: pipeline.ErrUpstreamProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newGitLabServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			})
			src, err := NewGitLabSource(server.URL, "")
			require.NoError(t, err)

			_, err = src.ListOpenChanges(context.Background(), "group/service")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGitLabState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pipeline.ChangeStatusNew, gitlabState("opened"))
	assert.Equal(t, pipeline.ChangeStatusMerged, gitlabState("merged"))
	assert.Equal(t, pipeline.ChangeStatusAbandoned, gitlabState("closed"))
	assert.Equal(t, pipeline.ChangeStatusAbandoned, gitlabState("locked"))
}
