// Package autosync provides synchronization operations (fetch, push).
// Rebasing lives in rebase.go.
package autosync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetch fetches changes from the specified remote into the remote tracking
// refs. Returns ErrAlreadyUpToDate if there is nothing new to fetch.
//
// Authentication relies on the remote's configured URL; the synchronizer only
// embeds credentials for the push critical section, never for fetches.
//
// Context timeout/cancellation is honored during the fetch operation.
func (r *Repo) Fetch(ctx context.Context, remote string) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	err := r.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remote})
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapErrorf(ErrRemoteMissing, "remote %q", remote)
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		return WrapError(err, "failed to fetch from remote")
	}

	return nil
}

// Push pushes the named branch to the specified remote.
//
// The plain form pushes refs/heads/<branch> directly. When a plain push is
// rejected, callers retry with PushOpts.ExplicitRefspec, which pushes HEAD to
// refs/heads/<branch> and, combined with PushOpts.SetUpstream, records remote
// tracking configuration for the branch. Returns ErrAlreadyUpToDate when the
// remote already has everything, and ErrNotFastForward when the remote branch
// has diverged.
//
// Context timeout/cancellation is honored during the push operation.
func (r *Repo) Push(ctx context.Context, remote, branch string, opts PushOpts) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	if branch == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	target := plumbing.NewBranchReferenceName(branch)
	spec := config.RefSpec(fmt.Sprintf("%s:%s", target, target))
	if opts.ExplicitRefspec {
		spec = config.RefSpec(fmt.Sprintf("HEAD:%s", target))
	}

	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
	})
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapErrorf(ErrRemoteMissing, "remote %q", remote)
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return ErrNotFastForward
		}
		return WrapError(err, "failed to push to remote")
	}

	if opts.SetUpstream {
		if err := r.setUpstream(remote, branch); err != nil {
			return err
		}
	}

	return nil
}

// setUpstream records branch.<name>.remote and branch.<name>.merge so later
// plain pushes and pulls know where the branch tracks.
func (r *Repo) setUpstream(remote, branch string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return WrapError(err, "failed to read repository config")
	}

	if cfg.Branches == nil {
		cfg.Branches = map[string]*config.Branch{}
	}

	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}

	if err := r.repo.SetConfig(cfg); err != nil {
		return WrapError(err, "failed to write upstream configuration")
	}

	return nil
}
