package logging

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// dirLock is a cross-process advisory lock on a directory, held in
// <dir>/.sweep.lock. It keeps two processes sharing a log directory from
// sweeping it at the same time.
type dirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

func newDirLock(dir string) *dirLock {
	path := filepath.Join(dir, sweepLockName)
	return &dirLock{
		path:  path,
		flock: flock.New(path),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if another process holds it.
func (l *dirLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *dirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}
