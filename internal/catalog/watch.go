package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// kubernetesDataDir is the symlink swapped by the kubelet when a mounted ConfigMap changes
const kubernetesDataDir = "..data"

// FileWatcher signals when a catalog file changes on disk.
// Bursts of events are coalesced into a single pending signal.
type FileWatcher struct {
	path    string
	changed chan struct{}
}

// NewFileWatcher creates a watcher for the file at path
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{
		path:    filepath.Clean(path),
		changed: make(chan struct{}, 1),
	}
}

// Changed receives a value after the file was written, created, renamed or removed
func (w *FileWatcher) Changed() <-chan struct{} {
	return w.changed
}

// Watch observes the file until ctx is cancelled.
// The parent directory is watched so atomic replacements and ConfigMap symlink
// swaps are seen as well as in-place writes.
func (w *FileWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory %s: %w", dir, err)
	}

	slog.Info("Watching catalog file for changes", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Stopping catalog file watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Catalog file changed", "event", event.Op.String(), "name", event.Name)
			w.notify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			slog.Error("Catalog file watcher error", "error", err)
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || filepath.Base(name) == kubernetesDataDir
}

func (w *FileWatcher) notify() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
