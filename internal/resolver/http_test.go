package resolver

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

func TestHTTPResolver_Resolve(t *testing.T) {
	t.Parallel()

	jenkinsStates := map[string]pipeline.StatusType{
		"success":  pipeline.StatusPassed,
		"FAILURE":  pipeline.StatusFailed,
		"BUILDING": pipeline.StatusRunning,
		"QUEUED":   pipeline.StatusEnqueued,
	}

	tests := []struct {
		name       string
		stateField string
		body       string
		err        error
		want       pipeline.StatusType
		wantErr    error
	}{
		{name: "mapped state", stateField: "result", body: `{"result": "SUCCESS"}`, want: pipeline.StatusPassed},
		{name: "mapped state is case-insensitive", stateField: "result", body: `{"result": "failure"}`, want: pipeline.StatusFailed},
		{name: "nested field", stateField: "build.state", body: `{"build": {"state": "BUILDING"}}`, want: pipeline.StatusRunning},
		{name: "status tag passes through", stateField: "", body: `{"status": "enqueued"}`, want: pipeline.StatusEnqueued},
		{name: "not found is un-entered", err: httpclient.NewHTTPError(404, "u", "Not Found"), want: pipeline.StatusUnEntered},
		{name: "server error", err: httpclient.NewHTTPError(502, "u", "Bad Gateway"), wantErr: pipeline.ErrUpstreamUnavailable},
		{name: "transport error", err: errors.New("connection reset"), wantErr: pipeline.ErrUpstreamUnavailable},
		{name: "invalid json", body: `<html>`, wantErr: pipeline.ErrUpstreamProtocol},
		{name: "missing field", stateField: "result", body: `{"other": 1}`, wantErr: pipeline.ErrUpstreamProtocol},
		{name: "unknown state", stateField: "result", body: `{"result": "UNSTABLE"}`, wantErr: pipeline.ErrUpstreamProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			client.EXPECT().
				Get(gomock.Any(), "https://jenkins.example.com/job/demo/1756/api/json").
				Return([]byte(tt.body), tt.err)

			res, err := NewHTTPResolver(client, "/job/{project}/{number}/api/json", tt.stateField, jenkinsStates)
			require.NoError(t, err)

			stage := pipeline.Stage{Type: pipeline.StageTypeJenkins, Name: "build", Host: "https://jenkins.example.com/"}
			status, err := res.Resolve(context.Background(), stage, testChange)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Type)
		})
	}
}

func TestHTTPResolver_ExpandPath(t *testing.T) {
	t.Parallel()

	res, err := NewHTTPResolver(httpclient.NewDefaultClient(0), "pipelines/{stage}?project={project}&branch={branch}", "", nil)
	require.NoError(t, err)

	change := testChange
	change.ProjectName = "team/app"
	change.Branch = "release/1.0"
	path := res.expandPath(pipeline.Stage{Name: "deploy prod"}, change)
	assert.Equal(t, "/pipelines/deploy%20prod?project=team%2Fapp&branch=release%2F1.0", path)
}

func TestHTTPResolver_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPResolver(nil, "/x", "", nil)
	require.Error(t, err)

	_, err = NewHTTPResolver(httpclient.NewDefaultClient(0), "", "", nil)
	require.Error(t, err)

	res, err := NewHTTPResolver(httpclient.NewDefaultClient(0), "/x", "", nil)
	require.NoError(t, err)
	_, err = res.Resolve(context.Background(), pipeline.Stage{Name: "no-host"}, testChange)
	require.Error(t, err)
}
