package autosync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureIdentity(t *testing.T) {
	t.Run("never clobbers an existing local identity", func(t *testing.T) {
		tr := setupTestRepo(t)

		cfg, err := tr.repo.repo.Config()
		require.NoError(t, err)
		cfg.User.Name = "Existing User"
		cfg.User.Email = "existing@example.com"
		require.NoError(t, tr.repo.repo.SetConfig(cfg))

		who, err := tr.repo.EnsureIdentity(tr.ctx, "Override", "override@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Existing User", who.Name)
		assert.Equal(t, "existing@example.com", who.Email)

		cfg, err = tr.repo.repo.Config()
		require.NoError(t, err)
		assert.Equal(t, "Existing User", cfg.User.Name)
		assert.Equal(t, "existing@example.com", cfg.User.Email)
	})

	t.Run("effective identity is always complete", func(t *testing.T) {
		tr := setupTestRepo(t)

		who, err := tr.repo.EnsureIdentity(tr.ctx, "", "")
		require.NoError(t, err)
		assert.NotEmpty(t, who.Name)
		assert.NotEmpty(t, who.Email)
	})

	t.Run("subsequent commits use the ensured identity", func(t *testing.T) {
		tr := setupTestRepo(t)

		cfg, err := tr.repo.repo.Config()
		require.NoError(t, err)
		cfg.User.Name = "Sync Bot"
		cfg.User.Email = "bot@example.com"
		require.NoError(t, tr.repo.repo.SetConfig(cfg))

		who, err := tr.repo.EnsureIdentity(tr.ctx, "", "")
		require.NoError(t, err)

		hash := tr.commitFileAs(t, "test.txt", "content", "Initial commit", who)
		commit, err := tr.repo.repo.CommitObject(hash)
		require.NoError(t, err)
		assert.Equal(t, "Sync Bot", commit.Author.Name)
		assert.Equal(t, "bot@example.com", commit.Author.Email)
	})
}
