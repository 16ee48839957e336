// Package autosync provides worktree operations (stage, commit).
package autosync

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// StageAll stages every working-tree change, including untracked files and
// deletions (the equivalent of "git add -A"). It returns true if the index
// has pending changes afterward.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) StageAll(ctx context.Context) (bool, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return false, WrapError(err, "context cancelled")
	}

	if err := r.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, WrapError(err, "failed to stage working tree")
	}

	status, err := r.worktree.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}

	return !status.IsClean(), nil
}

// Commit creates a new commit with the specified message and author/committer.
// It returns the SHA of the new commit. The CommitOpts can be used to control
// commit behavior such as allowing empty commits.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Commit(ctx context.Context, msg string, who Signature, opts CommitOpts) (string, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	if msg == "" {
		return "", WrapError(ErrInvalidRef, "commit message cannot be empty")
	}

	if who.Name == "" || who.Email == "" {
		return "", WrapError(ErrInvalidRef, "committer name and email are required")
	}

	// Check if there are any staged changes
	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}

	stagedCount := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Untracked && fileStatus.Staging != git.Unmodified {
			stagedCount++
		}
	}

	if stagedCount == 0 && !opts.AllowEmpty {
		return "", WrapError(ErrEmptyCommit, "no changes staged for commit")
	}

	commitOpts := &git.CommitOptions{
		Author: &object.Signature{
			Name:  who.Name,
			Email: who.Email,
			When:  who.When,
		},
		Committer: &object.Signature{
			Name:  who.Name,
			Email: who.Email,
			When:  who.When,
		},
		AllowEmptyCommits: opts.AllowEmpty,
	}

	hash, err := r.worktree.Commit(msg, commitOpts)
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrEmptyCommit
		}
		return "", WrapError(err, "failed to create commit")
	}

	return hash.String(), nil
}
