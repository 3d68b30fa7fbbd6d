package storage

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the database write lock.
var ErrLocked = errors.New("database is locked by another process")

// WriteLock is an advisory lock file next to the database. The in-memory
// taxonomy cache assumes one writer per database file.
type WriteLock struct {
	path string
	lock *flock.Flock
}

// AcquireWriteLock takes the lock at dbPath+".lock" without blocking.
func AcquireWriteLock(dbPath string) (*WriteLock, error) {
	path := dbPath + ".lock"
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &WriteLock{path: path, lock: l}, nil
}

// Path returns the lock file path.
func (w *WriteLock) Path() string {
	return w.path
}

// Release unlocks the lock file.
func (w *WriteLock) Release() error {
	if err := w.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
