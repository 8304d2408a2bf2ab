package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestRepoConfig lists the files committed by CreateTestRepo
type TestRepoConfig struct {
	Files map[string]string
}

// CreateTestRepo initialises a repository in a test temp dir and commits the given files.
// It returns the repository path and the commit hash.
func CreateTestRepo(t *testing.T, config TestRepoConfig) (string, plumbing.Hash) {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}

	hash := CommitFiles(t, repo, repoDir, config.Files, "Initial commit")
	return repoDir, hash
}

// CommitFiles writes files into the worktree of repo and commits them
func CommitFiles(t *testing.T, repo *git.Repository, repoDir string, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	workTree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}

	for filename, content := range files {
		filePath := filepath.Join(repoDir, filename)
		if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", filename, err)
		}
		if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write file %s: %v", filename, err)
		}
		if _, err := workTree.Add(filename); err != nil {
			t.Fatalf("Failed to add file %s: %v", filename, err)
		}
	}

	hash, err := workTree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return hash
}
