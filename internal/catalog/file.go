package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// FileCatalog reads entities from a multi-document YAML file.
// The file is re-read on every call so edits are picked up by the next pass.
type FileCatalog struct {
	path string
}

var _ Catalog = (*FileCatalog)(nil)

// NewFileCatalog creates a catalog backed by the YAML file at path
func NewFileCatalog(path string) (*FileCatalog, error) {
	if path == "" {
		return nil, fmt.Errorf("file catalog path is required")
	}
	return &FileCatalog{path: filepath.Clean(path)}, nil
}

func (f *FileCatalog) load() ([]Entity, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", pipeline.ErrCatalogUnavailable, f.path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	entities, err := DecodeEntities(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pipeline.ErrCatalogUnavailable, f.path, err)
	}
	slog.Debug("Loaded catalog file", "path", f.path, "entities", len(entities))
	return entities, nil
}

// GetEntityByRef returns the entity identified by ref
func (f *FileCatalog) GetEntityByRef(_ context.Context, ref EntityRef) (*Entity, error) {
	entities, err := f.load()
	if err != nil {
		return nil, err
	}
	if e := findEntity(entities, ref); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", pipeline.ErrEntityNotFound, ref)
}

// ListEntities returns all entities matching filter
func (f *FileCatalog) ListEntities(_ context.Context, filter Filter) ([]Entity, error) {
	entities, err := f.load()
	if err != nil {
		return nil, err
	}
	return applyFilter(entities, filter), nil
}
