package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/pipeline-tracker/internal/git"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// DefaultGitRefreshInterval is the minimum delay between two clones of a git catalog
const DefaultGitRefreshInterval = time.Minute

// GitCatalog reads entities from a YAML file kept in a git repository.
// The repository is cloned at most once per refresh interval; when a refresh
// fails the last successfully loaded entities keep being served. Only one
// clone runs at a time and callers holding cached entities never wait for it.
type GitCatalog struct {
	client  git.Client
	clone   git.CloneConfig
	path    string
	refresh time.Duration
	now     func() time.Time

	mu        sync.Mutex
	entities  []Entity
	commit    string
	fetchedAt time.Time
	// refreshing is closed when the running clone finishes; nil when idle
	refreshing chan struct{}
	lastErr    error
}

var _ Catalog = (*GitCatalog)(nil)

// GitCatalogOption configures a GitCatalog
type GitCatalogOption func(*GitCatalog)

// WithRefreshInterval sets the minimum delay between clones
func WithRefreshInterval(d time.Duration) GitCatalogOption {
	return func(g *GitCatalog) {
		if d > 0 {
			g.refresh = d
		}
	}
}

// WithGitClock overrides the clock used to age the cached entities
func WithGitClock(now func() time.Time) GitCatalogOption {
	return func(g *GitCatalog) {
		g.now = now
	}
}

// NewGitCatalog creates a catalog over the file at path in the repository described by clone
func NewGitCatalog(client git.Client, clone git.CloneConfig, path string, opts ...GitCatalogOption) (*GitCatalog, error) {
	if client == nil {
		return nil, fmt.Errorf("git client is required")
	}
	if clone.URL == "" {
		return nil, fmt.Errorf("git catalog repository is required")
	}
	if path == "" {
		return nil, fmt.Errorf("git catalog path is required")
	}

	g := &GitCatalog{
		client:  client,
		clone:   clone,
		path:    path,
		refresh: DefaultGitRefreshInterval,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Commit returns the commit hash the cached entities were read from
func (g *GitCatalog) Commit() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.commit
}

func (g *GitCatalog) load(ctx context.Context) ([]Entity, error) {
	for {
		g.mu.Lock()
		if g.entities != nil && (g.refreshing != nil || g.now().Sub(g.fetchedAt) < g.refresh) {
			entities := g.entities
			g.mu.Unlock()
			return entities, nil
		}
		if g.refreshing == nil {
			done := make(chan struct{})
			g.refreshing = done
			g.mu.Unlock()
			return g.reload(ctx, done)
		}
		wait := g.refreshing
		g.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", pipeline.ErrCatalogUnavailable, ctx.Err())
		}

		g.mu.Lock()
		entities, lastErr := g.entities, g.lastErr
		g.mu.Unlock()
		if entities != nil {
			return entities, nil
		}
		if lastErr != nil {
			return nil, lastErr
		}
	}
}

// reload clones the repository without holding the lock and publishes the result
func (g *GitCatalog) reload(ctx context.Context, done chan struct{}) ([]Entity, error) {
	entities, commit, err := g.fetch(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	defer close(done)
	g.refreshing = nil

	if err != nil {
		if g.entities != nil {
			slog.WarnContext(ctx, "Failed to refresh git catalog, serving last known entities",
				"repository", g.clone.URL,
				"commit", g.commit,
				"error", err,
			)
			// Wait a full interval before the next attempt
			g.fetchedAt = g.now()
			return g.entities, nil
		}
		g.lastErr = fmt.Errorf("%w: %v", pipeline.ErrCatalogUnavailable, err)
		return nil, g.lastErr
	}

	if commit != g.commit {
		slog.InfoContext(ctx, "Loaded git catalog",
			"repository", g.clone.URL,
			"path", g.path,
			"commit", commit,
			"entities", len(entities),
		)
	}
	g.entities = entities
	g.commit = commit
	g.fetchedAt = g.now()
	g.lastErr = nil
	return entities, nil
}

func (g *GitCatalog) fetch(ctx context.Context) ([]Entity, string, error) {
	clone := g.clone
	repoInfo, err := g.client.Clone(ctx, &clone)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if err := g.client.Cleanup(ctx, repoInfo); err != nil {
			slog.DebugContext(ctx, "Failed to clean up git clone", "error", err)
		}
	}()

	content, err := g.client.GetFileContent(repoInfo, g.path)
	if err != nil {
		return nil, "", err
	}

	entities, err := DecodeEntities(bytes.NewReader(content))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", g.path, err)
	}
	if entities == nil {
		entities = []Entity{}
	}
	return entities, repoInfo.CommitHash, nil
}

// GetEntityByRef returns the entity identified by ref
func (g *GitCatalog) GetEntityByRef(ctx context.Context, ref EntityRef) (*Entity, error) {
	entities, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	if e := findEntity(entities, ref); e != nil {
		found := *e
		return &found, nil
	}
	return nil, fmt.Errorf("%w: %s", pipeline.ErrEntityNotFound, ref)
}

// ListEntities returns all entities matching filter
func (g *GitCatalog) ListEntities(ctx context.Context, filter Filter) ([]Entity, error) {
	entities, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(entities, filter), nil
}
