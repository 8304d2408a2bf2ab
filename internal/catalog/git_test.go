package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/pipeline-tracker/internal/git"
	gitmocks "github.com/stacklok/pipeline-tracker/internal/git/mocks"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

const gitEntitiesPath = "catalog/entities.yaml"

func TestNewGitCatalog(t *testing.T) {
	t.Parallel()

	client := git.NewDefaultGitClient()

	_, err := NewGitCatalog(nil, git.CloneConfig{URL: "https://example.com/repo.git"}, gitEntitiesPath)
	require.Error(t, err)

	_, err = NewGitCatalog(client, git.CloneConfig{}, gitEntitiesPath)
	require.Error(t, err)

	_, err = NewGitCatalog(client, git.CloneConfig{URL: "https://example.com/repo.git"}, "")
	require.Error(t, err)

	g, err := NewGitCatalog(client, git.CloneConfig{URL: "https://example.com/repo.git"}, gitEntitiesPath,
		WithRefreshInterval(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultGitRefreshInterval, g.refresh)
}

func TestGitCatalog_LocalRepository(t *testing.T) {
	t.Parallel()

	repoDir, hash := git.CreateTestRepo(t, git.TestRepoConfig{
		Files: map[string]string{gitEntitiesPath: demoEntityYAML + "---\n" + noStagesEntityYAML},
	})

	now := time.Now()
	g, err := NewGitCatalog(git.NewDefaultGitClient(), git.CloneConfig{URL: repoDir}, gitEntitiesPath,
		WithRefreshInterval(time.Minute),
		WithGitClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	entities, err := g.ListEntities(t.Context(), Filter{WithStages: true})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "demo", entities[0].Metadata.Name)
	assert.Equal(t, hash.String(), g.Commit())

	entity, err := g.GetEntityByRef(t.Context(), NewEntityRef("component", "platform", "docs"))
	require.NoError(t, err)
	assert.Empty(t, entity.Stages())

	_, err = g.GetEntityByRef(t.Context(), NewEntityRef("component", "", "missing"))
	require.ErrorIs(t, err, pipeline.ErrEntityNotFound)

	// A new commit is only seen once the refresh interval has elapsed
	repo, err := gogit.PlainOpen(repoDir)
	require.NoError(t, err)
	second := git.CommitFiles(t, repo, repoDir, map[string]string{gitEntitiesPath: systemEntityYAML}, "Replace entities")

	entities, err = g.ListEntities(t.Context(), Filter{})
	require.NoError(t, err)
	assert.Len(t, entities, 2)
	assert.Equal(t, hash.String(), g.Commit())

	now = now.Add(2 * time.Minute)
	entities, err = g.ListEntities(t.Context(), Filter{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "payments", entities[0].Metadata.Name)
	assert.Equal(t, second.String(), g.Commit())
}

func TestGitCatalog_Failures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	repoInfo := &git.RepositoryInfo{CommitHash: "abc123"}

	now := time.Now()
	g, err := NewGitCatalog(client, git.CloneConfig{URL: "https://example.com/repo.git", Branch: "main"}, gitEntitiesPath,
		WithGitClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	// No cached entities: the clone failure surfaces as an unavailable catalog
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	_, err = g.ListEntities(t.Context(), Filter{})
	require.ErrorIs(t, err, pipeline.ErrCatalogUnavailable)

	// Successful load
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg *git.CloneConfig) (*git.RepositoryInfo, error) {
			assert.Equal(t, "main", cfg.Branch)
			return repoInfo, nil
		})
	client.EXPECT().GetFileContent(repoInfo, gitEntitiesPath).Return([]byte(demoEntityYAML), nil)
	client.EXPECT().Cleanup(gomock.Any(), repoInfo).Return(nil)
	entities, err := g.ListEntities(t.Context(), Filter{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "abc123", g.Commit())

	// Invalid content after expiry keeps the last good entities
	now = now.Add(2 * DefaultGitRefreshInterval)
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).Return(repoInfo, nil)
	client.EXPECT().GetFileContent(repoInfo, gitEntitiesPath).Return([]byte("kind: ["), nil)
	client.EXPECT().Cleanup(gomock.Any(), repoInfo).Return(nil)
	entities, err = g.ListEntities(t.Context(), Filter{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "demo", entities[0].Metadata.Name)
}

func TestGitCatalog_ServesCacheDuringRefresh(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	repoInfo := &git.RepositoryInfo{CommitHash: "abc123"}

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	g, err := NewGitCatalog(client, git.CloneConfig{URL: "https://example.com/repo.git"}, gitEntitiesPath,
		WithGitClock(clock),
	)
	require.NoError(t, err)

	client.EXPECT().Clone(gomock.Any(), gomock.Any()).Return(repoInfo, nil)
	client.EXPECT().GetFileContent(repoInfo, gitEntitiesPath).Return([]byte(demoEntityYAML), nil)
	client.EXPECT().Cleanup(gomock.Any(), repoInfo).Return(nil)
	_, err = g.ListEntities(t.Context(), Filter{})
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * DefaultGitRefreshInterval)
	mu.Unlock()

	started := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *git.CloneConfig) (*git.RepositoryInfo, error) {
			close(started)
			<-release
			return repoInfo, nil
		})
	client.EXPECT().GetFileContent(repoInfo, gitEntitiesPath).Return([]byte(systemEntityYAML), nil)
	client.EXPECT().Cleanup(gomock.Any(), repoInfo).Return(nil)

	refreshed := make(chan []Entity, 1)
	go func() {
		entities, err := g.ListEntities(context.Background(), Filter{})
		assert.NoError(t, err)
		refreshed <- entities
	}()
	<-started

	// The clone is blocked; readers still get the cached entities
	entity, err := g.GetEntityByRef(t.Context(), NewEntityRef("component", "", "demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo", entity.Metadata.Name)

	close(release)
	entities := <-refreshed
	require.Len(t, entities, 1)
	assert.Equal(t, "payments", entities[0].Metadata.Name)
}

func TestGitCatalog_ConcurrentColdLoadsShareOneClone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	repoInfo := &git.RepositoryInfo{CommitHash: "abc123"}

	g, err := NewGitCatalog(client, git.CloneConfig{URL: "https://example.com/repo.git"}, gitEntitiesPath)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *git.CloneConfig) (*git.RepositoryInfo, error) {
			close(started)
			<-release
			return repoInfo, nil
		}).Times(1)
	client.EXPECT().GetFileContent(repoInfo, gitEntitiesPath).Return([]byte(demoEntityYAML), nil)
	client.EXPECT().Cleanup(gomock.Any(), repoInfo).Return(nil)

	first := make(chan error, 1)
	go func() {
		_, err := g.ListEntities(context.Background(), Filter{})
		first <- err
	}()
	<-started

	waiterCtx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = g.ListEntities(waiterCtx, Filter{})
	require.ErrorIs(t, err, pipeline.ErrCatalogUnavailable)

	second := make(chan error, 1)
	go func() {
		_, err := g.GetEntityByRef(context.Background(), NewEntityRef("component", "", "demo"))
		second <- err
	}()

	close(release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)
}
