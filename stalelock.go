// Package autosync provides stale index.lock recovery.
package autosync

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// indexLockPath is git's own lock marker, relative to the repository root.
// It is foreign state: this system never creates it and deletes it only when
// it is old enough to belong to a crashed git process.
const indexLockPath = ".git/index.lock"

// clearStaleIndexLock inspects the repository's index.lock. Absent: proceed.
// Present and older than maxAge: remove it and proceed (the process that
// created it is presumed dead). Present and younger: return
// ErrConcurrentOperation, because a live git operation must not be disturbed.
func clearStaleIndexLock(ctx context.Context, fsys fs.Filesystem, now time.Time, maxAge time.Duration) error {
	info, err := fsys.Stat(indexLockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		// Unreadable metadata: treat the lock as abandoned, matching the
		// recovery path for a crashed git process.
		clog.FromContext(ctx).Warnf("index.lock unreadable (%v); removing", err)
		return removeIndexLock(fsys)
	}

	age := now.Sub(info.ModTime())
	if age < maxAge {
		return WrapErrorf(ErrConcurrentOperation,
			"index.lock exists and is recent (%s old)", age.Round(time.Second))
	}

	clog.FromContext(ctx).Infof("removing stale index.lock (age %s)", age.Round(time.Second))
	return removeIndexLock(fsys)
}

func removeIndexLock(fsys fs.Filesystem) error {
	if err := fsys.Remove(indexLockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return WrapError(err, "failed to remove stale index.lock")
	}
	return nil
}
