// Package status provides per-project reconciliation status and its persistence.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for project sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status of a project
	SaveStatus(ctx context.Context, projectName string, status *ProjectSyncStatus) error

	// LoadStatus loads the sync status of a project.
	// Returns an empty ProjectSyncStatus if the project was never synced.
	LoadStatus(ctx context.Context, projectName string) (*ProjectSyncStatus, error)

	// LoadAllStatus loads sync status for all projects
	LoadAllStatus(ctx context.Context) (map[string]*ProjectSyncStatus, error)
}

// fileStatusPersistence implements StatusPersistence using local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence.
// Each project gets a directory under basePath named after the escaped project name.
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

func (f *fileStatusPersistence) projectDir(projectName string) string {
	// Project names such as "platform/demo" contain slashes
	return filepath.Join(f.basePath, url.PathEscape(projectName))
}

// SaveStatus writes the status to a JSON file through a temporary file and rename
func (f *fileStatusPersistence) SaveStatus(_ context.Context, projectName string, status *ProjectSyncStatus) error {
	dir := f.projectDir(projectName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for project '%s': %w", projectName, err)
	}

	filePath := filepath.Join(dir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status for project '%s': %w", projectName, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for project '%s': %w", projectName, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for project '%s': %w", projectName, err)
	}

	return nil
}

// LoadStatus reads the status file of a project
func (f *fileStatusPersistence) LoadStatus(_ context.Context, projectName string) (*ProjectSyncStatus, error) {
	filePath := filepath.Join(f.projectDir(projectName), StatusFileName)

	// #nosec G304 -- the project name is escaped into a single path element
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectSyncStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for project '%s': %w", projectName, err)
	}

	var status ProjectSyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status for project '%s': %w", projectName, err)
	}

	return &status, nil
}

// LoadAllStatus loads the status of every project directory under the base path.
// Unreadable entries are skipped.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*ProjectSyncStatus, error) {
	result := make(map[string]*ProjectSyncStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		projectName, err := url.PathUnescape(entry.Name())
		if err != nil {
			continue
		}
		status, err := f.LoadStatus(ctx, projectName)
		if err != nil {
			continue
		}

		result[projectName] = status
	}

	return result, nil
}
