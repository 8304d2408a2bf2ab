package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/onsi/gomega"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// ConfigOptions controls the generated tracker configuration
type ConfigOptions struct {
	EntitiesPath string
	GerritURL    string
	Interval     string
	Prune        bool
	StatusDir    string
}

// WriteConfigYAML writes a tracker configuration with a file catalog, a
// Gerrit change source, an HTTP jenkins resolver and memory storage.
func WriteConfigYAML(dir string, opts ConfigOptions) string {
	interval := opts.Interval
	if interval == "" {
		interval = "100ms"
	}

	content := fmt.Sprintf(`catalog:
  type: file
  file:
    path: %s
changeSource:
  type: gerrit
  gerrit:
    baseURL: %s
    timeout: 2s
resolvers:
  jenkins:
    type: http
    statusPath: /status/{project}/{number}
    stateField: state
    timeout: 2s
    states:
      SUCCESS: passed
      FAILURE: failed
      BUILDING: running
      QUEUED: enqueued
  spinnaker:
    type: static
    status: un-entered
reconcile:
  interval: %s
  timeout: 5s
  concurrency: 2
  pruneClosedChanges: %t
storage:
  type: memory
`, opts.EntitiesPath, opts.GerritURL, interval, opts.Prune)

	if opts.StatusDir != "" {
		content += fmt.Sprintf("  statusDir: %s\n", opts.StatusDir)
	}

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, []byte(content), 0600)).To(gomega.Succeed())
	return path
}

// WriteEntitiesYAML writes a catalog with the "demo" component whose build
// stage lives on stageHost, plus a "docs" component without a project.
func WriteEntitiesYAML(dir, stageHost string) string {
	content := fmt.Sprintf(`apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: demo
  annotations:
    backstage.io/gerrit-project: demo
spec:
  stages:
    - type: jenkins
      name: build
      host: %s
    - type: spinnaker
      name: deploy
      host: https://spinnaker.example.com
---
apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: docs
spec:
  stages:
    - type: jenkins
      name: build
      host: %s
`, stageHost, stageHost)

	path := filepath.Join(dir, "entities.yaml")
	gomega.Expect(os.WriteFile(path, []byte(content), 0600)).To(gomega.Succeed())
	return path
}

// DemoChange builds an open change of the demo project
func DemoChange(number int64, subject string) pipeline.ChangeInfo {
	return pipeline.ChangeInfo{
		Number:      number,
		Subject:     subject,
		Status:      pipeline.ChangeStatusNew,
		Branch:      "master",
		ProjectName: "demo",
		OwnerName:   "John Doe",
	}
}
