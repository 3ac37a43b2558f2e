package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".listsync.lock"

// LockDir takes an exclusive, non-blocking file lock inside dir, creating dir if needed.
//
// The returned func releases the lock. A lock already held by another process yields [ErrSessionLocked].
func LockDir(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrSessionLocked, dir)
	}

	return fl.Unlock, nil
}
