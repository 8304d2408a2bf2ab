// Package helpers provides fixtures for the pipeline tracker integration tests.
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"

	"github.com/stacklok/pipeline-tracker/internal/app"
	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
)

// ServerTestHelper manages the tracker lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	address    string
	baseURL    string
	httpClient *http.Client
	app        *app.PipelineTrackerApp
}

// NewServerTestHelper creates a helper serving on a free local port
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	address := freeAddress()
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func freeAddress() string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = listener.Close()
	}()
	return listener.Addr().String()
}

// StartServer builds the app from the config file and starts it in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tracker, err := app.NewPipelineTrackerApp(s.ctx,
		app.WithConfig(cfg),
		app.WithAddress(s.address),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = tracker

	go func() {
		if err := tracker.Start(); err != nil {
			// The test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the tracker
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits until /readiness reports the store as reachable
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 50*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Get makes a GET request to path
func (s *ServerTestHelper) Get(path string) (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + path)
}

// GetHistory fetches /history/{kind}/{name} and decodes the body.
// It returns the status code alongside the decoded history.
func (s *ServerTestHelper) GetHistory(kind, name string) (int, []pipeline.ChangePipelineStatus, error) {
	var history []pipeline.ChangePipelineStatus
	code, err := s.getJSON(fmt.Sprintf("/history/%s/%s", kind, name), &history)
	return code, history, err
}

// GetStatus fetches /status/{project} and decodes the body
func (s *ServerTestHelper) GetStatus(project string) (int, *status.ProjectSyncStatus, error) {
	var st status.ProjectSyncStatus
	code, err := s.getJSON("/status/"+project, &st)
	return code, &st, err
}

func (s *ServerTestHelper) getJSON(path string, out any) (int, error) {
	resp, err := s.Get(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.Unmarshal(body, out)
}
