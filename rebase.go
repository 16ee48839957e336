// Package autosync provides rebase semantics on top of go-git plumbing.
//
// go-git has no native rebase. The synchronizer only ever needs the
// unattended subset: replay local-only commits on top of the remote tracking
// head when the replay cannot conflict, and refuse loudly otherwise. Conflict
// detection is at file granularity: if any path touched by a local commit also
// changed upstream since the merge base, the rebase is aborted with
// ErrRebaseConflict before anything is mutated.
package autosync

import (
	"context"
	"path"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Rebase replays commits that exist only on the current branch on top of the
// remote tracking head refs/remotes/<remote>/<branch>, keeping history linear.
//
// The no-op cases: the tracking ref does not exist yet (nothing fetched, or a
// brand-new branch), the local and remote heads are equal, or the local head
// is strictly ahead of the remote. A local head strictly behind the remote is
// fast-forwarded with a hard reset. Diverged histories are replayed commit by
// commit, preserving each commit's author, committer, and message.
//
// Returns ErrRebaseConflict when local and upstream changes overlap on a file,
// when histories are unrelated, or when a local merge commit would have to be
// flattened. No automatic resolution is attempted in any of these cases.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Rebase(ctx context.Context, remote, branch string) error {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	if remote == "" {
		remote = DefaultRemoteName
	}

	if branch == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		// No tracking ref: the branch does not exist upstream yet.
		return nil
	}

	head, err := r.repo.Head()
	if err != nil {
		return WrapError(err, "failed to get HEAD reference")
	}

	if head.Hash() == remoteRef.Hash() {
		return nil
	}

	local, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return WrapError(err, "failed to load local head commit")
	}

	upstream, err := r.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return WrapError(err, "failed to load remote head commit")
	}

	bases, err := local.MergeBase(upstream)
	if err != nil || len(bases) == 0 {
		return WrapErrorf(ErrRebaseConflict,
			"no common ancestor between %s and %s/%s", head.Name().Short(), remote, branch)
	}
	base := bases[0]

	switch base.Hash {
	case upstream.Hash:
		// Local is strictly ahead; the push will carry the new commits.
		return nil
	case local.Hash:
		// Local is strictly behind; fast-forward.
		if err := r.resetHard(upstream.Hash); err != nil {
			return WrapError(err, "failed to fast-forward to remote head")
		}
		return nil
	}

	replay, err := r.localCommitsSince(base, local)
	if err != nil {
		return err
	}

	upstreamPaths, err := changedPaths(base, upstream)
	if err != nil {
		return err
	}

	for _, c := range replay {
		localPaths, err := commitPaths(c)
		if err != nil {
			return err
		}
		for _, p := range localPaths {
			if _, clash := upstreamPaths[p]; clash {
				return WrapErrorf(ErrRebaseConflict,
					"%q changed both locally and upstream; run git pull --rebase %s %s and resolve by hand",
					p, remote, branch)
			}
		}
	}

	if err := r.resetHard(upstream.Hash); err != nil {
		return WrapError(err, "failed to reset onto remote head")
	}

	for _, c := range replay {
		if err := r.replayCommit(c); err != nil {
			return err
		}
	}

	return nil
}

// resetHard moves HEAD, the index, and the worktree to hash.
func (r *Repo) resetHard(hash plumbing.Hash) error {
	return r.worktree.Reset(&git.ResetOptions{Commit: hash, Mode: git.HardReset})
}

// localCommitsSince walks first parents from tip back to base and returns the
// commits in oldest-first order. A merge commit in that range aborts the walk:
// flattening merges is beyond unattended recovery.
func (r *Repo) localCommitsSince(base, tip *object.Commit) ([]*object.Commit, error) {
	var commits []*object.Commit

	for c := tip; c.Hash != base.Hash; {
		if c.NumParents() != 1 {
			return nil, WrapErrorf(ErrRebaseConflict,
				"local commit %s is a merge commit and cannot be replayed", c.Hash)
		}

		commits = append(commits, c)

		parent, err := c.Parent(0)
		if err != nil {
			return nil, WrapError(err, "failed to walk local commits")
		}
		c = parent
	}

	// Reverse into apply order.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	return commits, nil
}

// changedPaths returns the set of paths that differ between two commits' trees.
func changedPaths(from, to *object.Commit) (map[string]struct{}, error) {
	changes, err := diffCommits(from, to)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(changes))
	for _, ch := range changes {
		if ch.From.Name != "" {
			paths[ch.From.Name] = struct{}{}
		}
		if ch.To.Name != "" {
			paths[ch.To.Name] = struct{}{}
		}
	}

	return paths, nil
}

// commitPaths returns the paths a single non-merge commit touches relative to
// its parent.
func commitPaths(c *object.Commit) ([]string, error) {
	parent, err := c.Parent(0)
	if err != nil {
		return nil, WrapError(err, "failed to load parent commit")
	}

	changes, err := diffCommits(parent, c)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, ch := range changes {
		if ch.From.Name != "" {
			paths = append(paths, ch.From.Name)
		}
		if ch.To.Name != "" && ch.To.Name != ch.From.Name {
			paths = append(paths, ch.To.Name)
		}
	}

	return paths, nil
}

func diffCommits(from, to *object.Commit) (object.Changes, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, WrapError(err, "failed to load tree")
	}

	toTree, err := to.Tree()
	if err != nil {
		return nil, WrapError(err, "failed to load tree")
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, WrapError(err, "failed to diff trees")
	}

	return changes, nil
}

// replayCommit applies one original commit's changes to the worktree, stages
// them, and recommits with the original author, committer, and message.
func (r *Repo) replayCommit(c *object.Commit) error {
	parent, err := c.Parent(0)
	if err != nil {
		return WrapError(err, "failed to load parent commit")
	}

	changes, err := diffCommits(parent, c)
	if err != nil {
		return err
	}

	for _, ch := range changes {
		if err := r.applyChange(c, ch); err != nil {
			return err
		}
	}

	author := c.Author
	committer := c.Committer
	_, err = r.worktree.Commit(c.Message, &git.CommitOptions{
		Author:            &author,
		Committer:         &committer,
		AllowEmptyCommits: true,
	})
	return WrapErrorf(err, "failed to replay commit %s", c.Hash)
}

// applyChange writes (or removes) a single changed path in the worktree and
// stages the result.
func (r *Repo) applyChange(c *object.Commit, ch *object.Change) error {
	action, err := ch.Action()
	if err != nil {
		return WrapError(err, "failed to classify change")
	}

	if action == merkletrie.Delete {
		if _, err := r.worktree.Remove(ch.From.Name); err != nil {
			return WrapErrorf(err, "failed to remove %q", ch.From.Name)
		}
		return nil
	}

	// Renames surface as delete+insert pairs, so From may still need removal.
	if ch.From.Name != "" && ch.From.Name != ch.To.Name {
		if _, err := r.worktree.Remove(ch.From.Name); err != nil {
			return WrapErrorf(err, "failed to remove %q", ch.From.Name)
		}
	}

	tree, err := c.Tree()
	if err != nil {
		return WrapError(err, "failed to load commit tree")
	}

	file, err := tree.File(ch.To.Name)
	if err != nil {
		return WrapErrorf(err, "failed to load %q from commit %s", ch.To.Name, c.Hash)
	}

	contents, err := file.Contents()
	if err != nil {
		return WrapErrorf(err, "failed to read %q", ch.To.Name)
	}

	mode, err := ch.To.TreeEntry.Mode.ToOSFileMode()
	if err != nil {
		return WrapErrorf(err, "unsupported file mode for %q", ch.To.Name)
	}

	wtFS := r.worktree.Filesystem
	if dir := path.Dir(ch.To.Name); dir != "." {
		if err := wtFS.MkdirAll(dir, 0o755); err != nil {
			return WrapErrorf(err, "failed to create directory %q", dir)
		}
	}

	if err := util.WriteFile(wtFS, ch.To.Name, []byte(contents), mode); err != nil {
		return WrapErrorf(err, "failed to write %q", ch.To.Name)
	}

	if _, err := r.worktree.Add(ch.To.Name); err != nil {
		return WrapErrorf(err, "failed to stage %q", ch.To.Name)
	}

	return nil
}
