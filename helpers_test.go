package autosync

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/require"
)

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo *Repo
	fs   fs.Filesystem
	ctx  context.Context
}

// testSignature is the fixed identity used for commits created by tests.
func testSignature() Signature {
	return Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	opts := Options{
		FS:      memFS,
		Workdir: ".",
	}

	repo, err := Init(ctx, &opts)
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{
		repo: repo,
		fs:   memFS,
		ctx:  ctx,
	}
}

// setupTestRepoWithCommit creates a test repository with an initial commit
func setupTestRepoWithCommit(t *testing.T) *testRepo {
	t.Helper()

	tr := setupTestRepo(t)
	tr.commitFile(t, "test.txt", "initial content", "Initial commit")
	return tr
}

// commitFile writes content to path and commits it, returning the new hash.
func (tr *testRepo) commitFile(t *testing.T, path, content, msg string) plumbing.Hash {
	t.Helper()
	return tr.commitFileAs(t, path, content, msg, testSignature())
}

// commitFileAs is commitFile with an explicit committer identity.
func (tr *testRepo) commitFileAs(t *testing.T, path, content, msg string, who Signature) plumbing.Hash {
	t.Helper()

	err := tr.fs.WriteFile(path, []byte(content), 0o666)
	require.NoError(t, err, "failed to write file %s", path)

	dirty, err := tr.repo.StageAll(tr.ctx)
	require.NoError(t, err, "failed to stage changes")
	require.True(t, dirty, "expected staged changes for %s", path)

	hash, err := tr.repo.Commit(tr.ctx, msg, who, CommitOpts{})
	require.NoError(t, err, "failed to commit %s", path)

	return plumbing.NewHash(hash)
}

// setRemoteRef points the remote tracking ref for remote/branch at hash.
func (tr *testRepo) setRemoteRef(t *testing.T, remoteName, branchName string, hash plumbing.Hash) {
	t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remoteName, branchName), hash)
	err := tr.repo.repo.Storer.SetReference(ref)
	require.NoError(t, err, "failed to set remote tracking reference")
}

// headHash returns the current HEAD commit hash.
func (tr *testRepo) headHash(t *testing.T) plumbing.Hash {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")
	return head.Hash()
}

// resetHard moves HEAD and the worktree back to hash.
func (tr *testRepo) resetHard(t *testing.T, hash plumbing.Hash) {
	t.Helper()

	err := tr.repo.resetHard(hash)
	require.NoError(t, err, "failed to reset to %s", hash)
}

// readFile returns the content of path within the repository filesystem.
func (tr *testRepo) readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := tr.fs.ReadFile(path)
	require.NoError(t, err, "failed to read %s", path)
	return string(data)
}
