//go:build !unix

package lockfile

import "os"

// Non-unix platforms fall back to no-op locking: the O_CREATE of the
// sidecar still serializes most accidental double-runs, and the lock is
// advisory to begin with.
func flockExclusive(f *os.File) error { return nil }

func flockUnlock(f *os.File) error { return nil }
