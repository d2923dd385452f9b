package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/nao1215/pdscload/internal/fileutil"
)

const (
	// HTMLDir is the directory served by the device, relative to the target root.
	HTMLDir = "html"

	// RepositoryDir holds the installed data, relative to HTMLDir.
	RepositoryDir = "repository"

	// ViewerDir is the viewer application inside the content base path.
	ViewerDir = "viewer"

	// LockFile is created in the target root while a load runs.
	LockFile = ".pdscload.lock"
)

var (
	// ErrTargetLocked is returned when another load holds the target.
	ErrTargetLocked = errors.New("target is locked by another load")

	// ErrNoViewer is returned when the content base path has no viewer.
	ErrNoViewer = errors.New("viewer not found in content base path")
)

// Target is the mount point or directory a load writes to.
type Target struct {
	Root string

	lock *flock.Flock
}

// NewTarget returns the target rooted at root.
func NewTarget(root string) *Target {
	return &Target{
		Root: root,
		lock: flock.New(filepath.Join(root, LockFile)),
	}
}

// HTMLPath returns {root}/html.
func (t *Target) HTMLPath() string {
	return filepath.Join(t.Root, HTMLDir)
}

// RepositoryPath returns {root}/html/repository.
func (t *Target) RepositoryPath() string {
	return filepath.Join(t.Root, HTMLDir, RepositoryDir)
}

// Prepare removes any previous load and recreates the empty html and
// repository directories.
func (t *Target) Prepare() error {
	info, err := os.Stat(t.Root)
	if err != nil {
		return fmt.Errorf("target %s: %w", t.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", t.Root)
	}

	if err := os.RemoveAll(t.HTMLPath()); err != nil {
		return fmt.Errorf("remove %s: %w", t.HTMLPath(), err)
	}
	if err := os.MkdirAll(t.RepositoryPath(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", t.RepositoryPath(), err)
	}
	return nil
}

// InstallViewer copies {contentBase}/viewer into the html directory and
// returns the number of files copied.
func (t *Target) InstallViewer(contentBase string) (int, error) {
	src := filepath.Join(contentBase, ViewerDir)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrNoViewer, src)
	}
	return fileutil.CopyTree(src, t.HTMLPath())
}

// Lock takes an exclusive lock on the target. It fails with ErrTargetLocked
// instead of waiting when the lock is held.
func (t *Target) Lock() error {
	ok, err := t.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTargetLocked, t.lock.Path())
	}
	return nil
}

// Unlock releases the lock and removes the lock file.
func (t *Target) Unlock() error {
	if err := t.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := os.Remove(t.lock.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
