package app

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/pipeline-tracker/internal/config"
	mocksvc "github.com/stacklok/pipeline-tracker/internal/service/mocks"
	"github.com/stacklok/pipeline-tracker/internal/sync/coordinator"
)

// mockCoordinator implements the coordinator.Coordinator interface for testing
type mockCoordinator struct {
	mu          sync.Mutex
	startCalled bool
	stopCalled  bool
}

func (m *mockCoordinator) Start(ctx context.Context) error {
	m.mu.Lock()
	m.startCalled = true
	m.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (m *mockCoordinator) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockCoordinator) wasStartCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalled
}

func (m *mockCoordinator) wasStopCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

// createTestApp assembles a PipelineTrackerApp around a mocked query service
// and coordinator without touching storage.
func createTestApp(t *testing.T, ctrl *gomock.Controller, addr string) *PipelineTrackerApp {
	t.Helper()

	mockSvc := mocksvc.NewMockQueryService(ctrl)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(nil).AnyTimes()

	cfg := createTestAppConfig()
	ctx := context.Background()
	appCtx, cancel := context.WithCancel(ctx)

	appCfg := &pipelineTrackerAppConfig{
		config:         cfg,
		address:        addr,
		requestTimeout: 10 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   15 * time.Second,
		idleTimeout:    60 * time.Second,
	}

	server, err := buildHTTPServer(ctx, appCfg, mockSvc)
	require.NoError(t, err)

	return &PipelineTrackerApp{
		config: cfg,
		components: &AppComponents{
			SyncCoordinator: &mockCoordinator{},
			QueryService:    mockSvc,
		},
		httpServer: server,
		ctx:        appCtx,
		cancelFunc: cancel,
	}
}

func createTestAppConfig() *config.Config {
	return &config.Config{
		Catalog:      config.CatalogConfig{Type: config.CatalogTypeFile, File: &config.FileCatalogConfig{Path: "/tmp/entities.yaml"}},
		ChangeSource: config.ChangeSourceConfig{Type: config.ChangeSourceTypeStatic},
		Storage:      &config.StorageConfig{Type: config.StorageTypeMemory},
	}
}

func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func TestPipelineTrackerApp_StartAndStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, freeAddress(t))

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	url := "http://" + app.httpServer.Addr + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec // test URL
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	mockCoord := app.components.SyncCoordinator.(*mockCoordinator)
	assert.True(t, mockCoord.wasStartCalled(), "reconciliation task should be started")

	require.NoError(t, app.Stop(5*time.Second))
	assert.True(t, mockCoord.wasStopCalled(), "reconciliation task should be stopped")

	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestPipelineTrackerApp_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")
	app.cancelFunc = nil

	require.NoError(t, app.Stop(time.Second))
	assert.True(t, app.components.SyncCoordinator.(*mockCoordinator).wasStopCalled())
}

func TestPipelineTrackerApp_Getters(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":8080")

	require.NotNil(t, app.GetConfig())
	assert.Equal(t, config.CatalogTypeFile, app.GetConfig().Catalog.Type)
	assert.Equal(t, ":8080", app.GetHTTPServer().Addr)
}

func TestPipelineTrackerApp_StartError_AddressInUse(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	app := createTestApp(t, ctrl, listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case startErr := <-errChan:
		require.Error(t, startErr)
		assert.Contains(t, startErr.Error(), "HTTP server failed")
	case <-time.After(5 * time.Second):
		_ = app.Stop(time.Second)
		t.Fatal("Expected Start() to fail due to port in use")
	}
}

var _ coordinator.Coordinator = (*mockCoordinator)(nil)
