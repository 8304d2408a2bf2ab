package git

import (
	"errors"
	"fmt"
	"os"
	"sync"

	billy "github.com/go-git/go-billy/v5"
)

const (
	// DefaultMaxFiles is the number of files a single clone may create
	DefaultMaxFiles = 10 * 1000
	// DefaultMaxTotalFileSize is the number of bytes a single clone may write
	DefaultMaxTotalFileSize = 100 * 1024 * 1024
)

// ErrCloneLimitExceeded is returned when a clone writes more files or bytes than allowed
var ErrCloneLimitExceeded = errors.New("clone limit exceeded")

type fsUsage struct {
	mu    sync.Mutex
	files int64
	bytes int64
}

// LimitedFs wraps a filesystem and caps the files created and bytes written through it.
// Filesystems returned by Chroot share the same budget.
type LimitedFs struct {
	billy.Filesystem

	MaxFiles      int64
	TotalFileSize int64

	usage *fsUsage
}

// NewLimitedFs wraps fs with the given limits
func NewLimitedFs(fs billy.Filesystem, maxFiles, totalFileSize int64) *LimitedFs {
	return &LimitedFs{
		Filesystem:    fs,
		MaxFiles:      maxFiles,
		TotalFileSize: totalFileSize,
		usage:         &fsUsage{},
	}
}

// Create creates or truncates the named file
func (l *LimitedFs) Create(filename string) (billy.File, error) {
	return l.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// OpenFile counts newly created files and meters writes on writable handles
func (l *LimitedFs) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if _, err := l.Filesystem.Lstat(filename); errors.Is(err, os.ErrNotExist) {
			if err := l.addFile(filename); err != nil {
				return nil, err
			}
		}
	}
	f, err := l.Filesystem.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return f, nil
	}
	return &limitedFile{File: f, fs: l}, nil
}

// TempFile creates a metered temporary file
func (l *LimitedFs) TempFile(dir, prefix string) (billy.File, error) {
	if err := l.addFile(dir); err != nil {
		return nil, err
	}
	f, err := l.Filesystem.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

// Symlink counts the link as a file
func (l *LimitedFs) Symlink(target, link string) error {
	if err := l.addFile(link); err != nil {
		return err
	}
	return l.Filesystem.Symlink(target, link)
}

// Chroot returns a limited view of the subtree at path
func (l *LimitedFs) Chroot(path string) (billy.Filesystem, error) {
	sub, err := l.Filesystem.Chroot(path)
	if err != nil {
		return nil, err
	}
	return &LimitedFs{
		Filesystem:    sub,
		MaxFiles:      l.MaxFiles,
		TotalFileSize: l.TotalFileSize,
		usage:         l.usage,
	}, nil
}

func (l *LimitedFs) addFile(name string) error {
	l.usage.mu.Lock()
	defer l.usage.mu.Unlock()
	if l.usage.files+1 > l.MaxFiles {
		return fmt.Errorf("%w: more than %d files (creating %s)", ErrCloneLimitExceeded, l.MaxFiles, name)
	}
	l.usage.files++
	return nil
}

func (l *LimitedFs) addBytes(n int64) error {
	l.usage.mu.Lock()
	defer l.usage.mu.Unlock()
	if l.usage.bytes+n > l.TotalFileSize {
		return fmt.Errorf("%w: more than %d bytes", ErrCloneLimitExceeded, l.TotalFileSize)
	}
	l.usage.bytes += n
	return nil
}

type limitedFile struct {
	billy.File
	fs *LimitedFs
}

func (f *limitedFile) Write(p []byte) (int, error) {
	if err := f.fs.addBytes(int64(len(p))); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}
