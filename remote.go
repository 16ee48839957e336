// Package autosync provides remote configuration access.
package autosync

import (
	"context"
)

// RemoteURL returns the first configured URL of the named remote.
// Returns ErrRemoteMissing if the remote is not configured.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	if remote == "" {
		remote = DefaultRemoteName
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return "", WrapError(err, "failed to read repository config")
	}

	rc, ok := cfg.Remotes[remote]
	if !ok || len(rc.URLs) == 0 {
		return "", WrapErrorf(ErrRemoteMissing, "remote %q", remote)
	}

	return rc.URLs[0], nil
}

// SetRemoteURL replaces the URL of the named remote in the repository config.
// The synchronizer uses this to swap in a credentialed push URL for the
// duration of the push critical section and to restore the original afterward.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) SetRemoteURL(ctx context.Context, remote, url string) error {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	if remote == "" {
		remote = DefaultRemoteName
	}

	if url == "" {
		return WrapError(ErrInvalidRef, "remote URL cannot be empty")
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return WrapError(err, "failed to read repository config")
	}

	rc, ok := cfg.Remotes[remote]
	if !ok {
		return WrapErrorf(ErrRemoteMissing, "remote %q", remote)
	}

	rc.URLs = []string{url}

	if err := r.repo.SetConfig(cfg); err != nil {
		return WrapError(err, "failed to write repository config")
	}

	return nil
}
