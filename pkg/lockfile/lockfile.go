// Package lockfile provides the advisory lock that keeps two processes from
// assembling the same instance at once.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

// FileName is the lock file created inside an instance or server directory.
const FileName = ".lodestone.lock"

// ErrAlreadyLocked indicates the lock is held by another process.
var ErrAlreadyLocked = errors.New("lock already held")

// Lock is a held lock. The zero value and nil are released locks.
type Lock struct {
	path string
	f    *os.File
}

// For returns the lock path of an instance directory.
func For(dir string) string {
	return filepath.Join(dir, FileName)
}

// Acquire takes an exclusive lock on path without blocking and records the pid
// in it. The parent directory is created when missing.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		return nil, fmt.Errorf("lock path is empty: %w", errutils.ErrInvalidPath)
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return nil, errutils.FS("mkdir", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, fsutil.FileModeDefault)
	if err != nil {
		return nil, errutils.FS("open", path, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrAlreadyLocked) {
			return nil, fmt.Errorf("%s: %w", path, ErrAlreadyLocked)
		}
		return nil, errutils.FS("lock", path, err)
	}

	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Sync()

	return &Lock{path: path, f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks and removes the lock file. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := unlockFile(l.f)
	closeErr := l.f.Close()
	l.f = nil
	removeErr := os.Remove(l.path)
	if os.IsNotExist(removeErr) {
		removeErr = nil
	}
	return errors.Join(unlockErr, closeErr, removeErr)
}
