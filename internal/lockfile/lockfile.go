// Package lockfile implements a best-effort cross-process advisory lock as a
// marker file. The marker's existence encodes "a run is in progress": acquire
// creates it exclusively, release removes it. A crashed holder cannot
// release, so a marker older than the staleness threshold is treated as
// abandoned and reclaimed. The lock works on any filesystem the project's fs
// abstraction supports, including in-memory ones.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// ErrHeld is returned when the lock could not be acquired within the timeout.
var ErrHeld = errors.New("lock is held by another process")

// pollInterval is how often a blocked acquire re-checks the marker.
const pollInterval = 100 * time.Millisecond

// Lock is a marker-file lock at a fixed path.
type Lock struct {
	fs       fs.Filesystem
	path     string
	staleAge time.Duration
	now      func() time.Time
}

// New returns a Lock for the given path. The lock is not acquired.
// A marker older than staleAge is presumed abandoned by a dead holder and is
// reclaimed during Acquire; staleAge <= 0 disables reclamation.
func New(fsys fs.Filesystem, path string, staleAge time.Duration) *Lock {
	return &Lock{fs: fsys, path: path, staleAge: staleAge, now: time.Now}
}

// Path returns the marker file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire attempts to create the marker file exclusively, polling until it
// succeeds or the timeout elapses. On success it returns a release func that
// removes the marker; callers must invoke it on every exit path. On timeout
// it returns ErrHeld: a marker younger than the staleness threshold belongs
// to a live run. Context cancellation aborts the wait early.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) (func(), error) {
	deadline := l.now().Add(timeout)

	for {
		ok, err := l.tryAcquire()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", l.path, err)
		}
		if ok {
			return l.release, nil
		}

		if l.now().After(deadline) {
			return nil, ErrHeld
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// tryAcquire attempts an exclusive create of the marker, reclaiming an
// abandoned one first if its age permits.
func (l *Lock) tryAcquire() (bool, error) {
	ok, err := l.createMarker()
	if err != nil || ok {
		return ok, err
	}

	if !l.reclaimAbandoned() {
		return false, nil
	}

	return l.createMarker()
}

// createMarker performs a single exclusive create.
func (l *Lock) createMarker() (bool, error) {
	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}

	// Record holder details for post-mortem debugging of abandoned locks.
	_, _ = fmt.Fprintf(f, "pid=%d acquired=%s\n", os.Getpid(), l.now().UTC().Format(time.RFC3339))
	if err := f.Close(); err != nil {
		_ = l.fs.Remove(l.path)
		return false, err
	}

	return true, nil
}

// reclaimAbandoned removes the marker when it is older than the staleness
// threshold and reports whether it did. The holder of such a marker crashed
// without releasing; age is the only liveness signal the marker carries.
func (l *Lock) reclaimAbandoned() bool {
	if l.staleAge <= 0 {
		return false
	}

	info, err := l.fs.Stat(l.path)
	if err != nil {
		// Marker vanished between create and stat; the next create decides.
		return errors.Is(err, os.ErrNotExist)
	}

	if l.now().Sub(info.ModTime()) < l.staleAge {
		return false
	}

	_ = l.fs.Remove(l.path)
	return true
}

// release removes the marker. Removal failures are swallowed: the marker may
// already be gone, and a marker leaked here is reclaimed by a later run once
// it passes the staleness threshold.
func (l *Lock) release() {
	_ = l.fs.Remove(l.path)
}
