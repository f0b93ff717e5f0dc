package split

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"chapsplit/internal/failure"
)

const lockFileName = ".chapsplit.lock"

// ErrDirectoryBusy reports that another run holds the output directory lock.
var ErrDirectoryBusy = fmt.Errorf("%w: output directory is in use by another chapsplit run", failure.ErrValidation)

// DirLock is an exclusive advisory lock on an output directory.
type DirLock struct {
	lock *flock.Flock
}

// LockDirectory takes the lock for dir without blocking.
func LockDirectory(dir string) (*DirLock, error) {
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, &DirectoryError{Path: dir, Err: fmt.Errorf("acquire lock: %w", err)}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryBusy, dir)
	}
	return &DirLock{lock: lock}, nil
}

// Release drops the lock and removes the lock file.
func (l *DirLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	path := l.lock.Path()
	err := l.lock.Unlock()
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}
