package git

import (
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// CloneConfig describes which revision of a repository to clone
type CloneConfig struct {
	// URL is the repository URL, or a local path
	URL string

	// Branch to clone. Ignored when Commit is set.
	Branch string

	// Tag to clone. Ignored when Commit or Branch is set.
	Tag string

	// Commit is a full commit hash to check out
	Commit string

	// Auth enables HTTP basic authentication
	Auth *AuthConfig
}

// AuthConfig holds HTTP basic credentials for a repository
type AuthConfig struct {
	Username string
	Password string
}

// RepositoryInfo is an in-memory clone of a repository
type RepositoryInfo struct {
	// Repository is the go-git repository instance
	Repository *git.Repository

	// Branch is the checked out branch, empty for detached checkouts
	Branch string

	// CommitHash is the hash of the checked out commit
	CommitHash string

	// RemoteURL is the URL the repository was cloned from
	RemoteURL string

	// storerFilesystem holds the object database and is released by Cleanup
	storerFilesystem billy.Filesystem

	// objectCache holds decompressed objects and is released by Cleanup
	objectCache cache.Object
}
