package git

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client defines the interface for Git operations
type Client interface {
	// Clone clones a repository with the given configuration
	Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error)

	// GetFileContent retrieves the content of a file at the checked out commit
	GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error)

	// Cleanup releases the in-memory repository
	Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error
}

// defaultGitClient implements Client using go-git
type defaultGitClient struct {
	maxFiles      int64
	totalFileSize int64
}

// ClientOption configures the default client
type ClientOption func(*defaultGitClient)

// WithCloneLimits caps the files and bytes a single clone may write into memory
func WithCloneLimits(maxFiles, totalFileSize int64) ClientOption {
	return func(c *defaultGitClient) {
		if maxFiles > 0 {
			c.maxFiles = maxFiles
		}
		if totalFileSize > 0 {
			c.totalFileSize = totalFileSize
		}
	}
}

// NewDefaultGitClient creates a new defaultGitClient
func NewDefaultGitClient(opts ...ClientOption) Client {
	c := &defaultGitClient{
		maxFiles:      DefaultMaxFiles,
		totalFileSize: DefaultMaxTotalFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone clones a repository into memory.
// Branch and tag clones are shallow; commit clones fetch the full history.
func (c *defaultGitClient) Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error) {
	if config == nil || config.URL == "" {
		return nil, fmt.Errorf("repository URL is required")
	}

	cloneOptions := &git.CloneOptions{
		URL: config.URL,
	}

	if config.Auth != nil && config.Auth.Username != "" {
		cloneOptions.Auth = &githttp.BasicAuth{
			Username: config.Auth.Username,
			Password: config.Auth.Password,
		}
		slog.DebugContext(ctx, "Using Git HTTP Basic authentication", "username", config.Auth.Username)
	}

	if config.Commit == "" {
		cloneOptions.Depth = 1
		if config.Branch != "" {
			cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(config.Branch)
			cloneOptions.SingleBranch = true
		} else if config.Tag != "" {
			cloneOptions.ReferenceName = plumbing.NewTagReferenceName(config.Tag)
			cloneOptions.SingleBranch = true
		}
	}

	// go-git wants separate filesystems for the storer and the worktree.
	// Both draw from one budget so a clone cannot exhaust memory.
	worktreeFs := NewLimitedFs(memfs.New(), c.maxFiles, c.totalFileSize)
	storerFs := &LimitedFs{
		Filesystem:    memfs.New(),
		MaxFiles:      c.maxFiles,
		TotalFileSize: c.totalFileSize,
		usage:         worktreeFs.usage,
	}
	storerCache := cache.NewObjectLRUDefault()
	storer := filesystem.NewStorage(storerFs, storerCache)

	repo, err := git.CloneContext(ctx, storer, worktreeFs, cloneOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	repoInfo := &RepositoryInfo{
		Repository:       repo,
		RemoteURL:        config.URL,
		storerFilesystem: storerFs,
		objectCache:      storerCache,
	}

	if config.Commit != "" {
		workTree, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree: %w", err)
		}

		err = workTree.Checkout(&git.CheckoutOptions{
			Hash: plumbing.NewHash(config.Commit),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to checkout commit %s: %w", config.Commit, err)
		}
	}

	if err := c.updateRepositoryInfo(repoInfo); err != nil {
		return nil, fmt.Errorf("failed to update repository info: %w", err)
	}

	slog.DebugContext(ctx, "Cloned repository",
		"url", config.URL,
		"branch", repoInfo.Branch,
		"commit", repoInfo.CommitHash,
	)
	return repoInfo, nil
}

// GetFileContent retrieves the content of a file at HEAD
func (*defaultGitClient) GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	commit, err := repoInfo.Repository.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return []byte(content), nil
}

// Cleanup drops the object cache and both in-memory filesystems
func (*defaultGitClient) Cleanup(_ context.Context, repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	if repoInfo.objectCache != nil {
		repoInfo.objectCache.Clear()
	}

	worktree, err := repoInfo.Repository.Worktree()
	if err == nil && worktree.Filesystem != nil {
		_ = util.RemoveAll(worktree.Filesystem, "/")
	}

	if repoInfo.storerFilesystem != nil {
		_ = util.RemoveAll(repoInfo.storerFilesystem, "/")
	}

	repoInfo.objectCache = nil
	repoInfo.storerFilesystem = nil
	repoInfo.Repository = nil
	return nil
}

// updateRepositoryInfo records the checked out branch and commit
func (*defaultGitClient) updateRepositoryInfo(repoInfo *RepositoryInfo) error {
	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if ref.Name().IsBranch() {
		repoInfo.Branch = ref.Name().Short()
	}
	repoInfo.CommitHash = ref.Hash().String()

	return nil
}
