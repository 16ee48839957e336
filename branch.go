// Package autosync provides branch queries for the synchronizer.
package autosync

import (
	"context"
)

// CurrentBranch returns the name of the currently checked out branch.
// It returns ErrDetachedHead if HEAD is not pointing at a branch, so callers
// can fall back to a configured branch name.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", WrapError(ErrDetachedHead, "HEAD does not point at a branch")
	}

	return head.Name().Short(), nil
}
