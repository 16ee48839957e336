package autosync

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageAll(t *testing.T) {
	t.Run("stages untracked files", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		err := tr.fs.WriteFile("new.txt", []byte("new content"), 0o666)
		require.NoError(t, err)

		dirty, err := tr.repo.StageAll(tr.ctx)
		require.NoError(t, err)
		assert.True(t, dirty, "untracked file should leave the index dirty")
	})

	t.Run("stages modifications", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		err := tr.fs.WriteFile("test.txt", []byte("changed"), 0o666)
		require.NoError(t, err)

		dirty, err := tr.repo.StageAll(tr.ctx)
		require.NoError(t, err)
		assert.True(t, dirty)
	})

	t.Run("stages deletions", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		err := tr.fs.Remove("test.txt")
		require.NoError(t, err)

		dirty, err := tr.repo.StageAll(tr.ctx)
		require.NoError(t, err)
		assert.True(t, dirty, "deletion should leave the index dirty")
	})

	t.Run("clean tree reports no changes", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		dirty, err := tr.repo.StageAll(tr.ctx)
		require.NoError(t, err)
		assert.False(t, dirty)
	})
}

func TestCommit(t *testing.T) {
	t.Run("creates commit from staged changes", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		err := tr.fs.WriteFile("test.txt", []byte("updated"), 0o666)
		require.NoError(t, err)

		dirty, err := tr.repo.StageAll(tr.ctx)
		require.NoError(t, err)
		require.True(t, dirty)

		hash, err := tr.repo.Commit(tr.ctx, "Update test file", testSignature(), CommitOpts{})
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.Equal(t, plumbing.NewHash(hash), tr.headHash(t))
	})

	t.Run("preserves author identity and message", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		hash := tr.commitFile(t, "test.txt", "second", "Second commit")

		commit, err := tr.repo.repo.CommitObject(hash)
		require.NoError(t, err)
		assert.Equal(t, "Second commit", commit.Message)
		assert.Equal(t, "Test User", commit.Author.Name)
		assert.Equal(t, "test@example.com", commit.Author.Email)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		_, err := tr.repo.Commit(tr.ctx, "", testSignature(), CommitOpts{})
		assert.ErrorIs(t, err, ErrInvalidRef)
	})

	t.Run("rejects missing identity", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		_, err := tr.repo.Commit(tr.ctx, "message", Signature{}, CommitOpts{})
		assert.ErrorIs(t, err, ErrInvalidRef)
	})

	t.Run("nothing staged returns ErrEmptyCommit", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		_, err := tr.repo.Commit(tr.ctx, "nothing to see", testSignature(), CommitOpts{})
		assert.ErrorIs(t, err, ErrEmptyCommit)
	})

	t.Run("allows empty commit when requested", func(t *testing.T) {
		tr := setupTestRepoWithCommit(t)

		hash, err := tr.repo.Commit(tr.ctx, "empty on purpose", testSignature(), CommitOpts{AllowEmpty: true})
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})
}
