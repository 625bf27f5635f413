// Package lockfile provides an advisory file lock used around plan
// read-modify-write cycles. Without it, two concurrent complete/close/
// block invocations on the same handoff would silently clobber each
// other's writes.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLockBusy is returned when another process holds the lock.
var ErrLockBusy = errors.New("lock already held by another process")

// Lock is a held advisory lock backed by a sidecar .lock file.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive non-blocking lock on path + ".lock".
// Returns ErrLockBusy when another invocation holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644) // #nosec G304 - sidecar of a canonical path
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. Safe to call once; the sidecar file is left
// behind, which is harmless.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	defer l.f.Close()
	return flockUnlock(l.f)
}
