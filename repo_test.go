package autosync

import (
	"context"
	"testing"

	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "valid options",
			opts:    Options{FS: fsb.NewInMemoryFS()},
			wantErr: false,
		},
		{
			name:    "missing filesystem",
			opts:    Options{},
			wantErr: true,
		},
		{
			name:    "negative cache size",
			opts:    Options{FS: fsb.NewInMemoryFS(), StorerCacheSize: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRef)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptionsApplyDefaults(t *testing.T) {
	opts := Options{FS: fsb.NewInMemoryFS()}
	opts.applyDefaults()

	assert.Equal(t, DefaultWorkdir, opts.Workdir)
	assert.Equal(t, DefaultStorerCacheSize, opts.StorerCacheSize)
}

func TestInitAndOpen(t *testing.T) {
	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	repo, err := Init(ctx, &Options{FS: memFS})
	require.NoError(t, err)
	require.NotNil(t, repo)

	reopened, err := Open(ctx, &Options{FS: memFS})
	require.NoError(t, err)
	require.NotNil(t, reopened)
}

func TestOpenMissingRepository(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, &Options{FS: fsb.NewInMemoryFS()})
	assert.Error(t, err)
}

func TestOpenInvalidOptions(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, &Options{})
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestCancelledContext(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		op   func() error
	}{
		{"StageAll", func() error { _, err := tr.repo.StageAll(ctx); return err }},
		{"Commit", func() error { _, err := tr.repo.Commit(ctx, "msg", testSignature(), CommitOpts{}); return err }},
		{"CurrentBranch", func() error { _, err := tr.repo.CurrentBranch(ctx); return err }},
		{"EnsureIdentity", func() error { _, err := tr.repo.EnsureIdentity(ctx, "", ""); return err }},
		{"RemoteURL", func() error { _, err := tr.repo.RemoteURL(ctx, "origin"); return err }},
		{"SetRemoteURL", func() error { return tr.repo.SetRemoteURL(ctx, "origin", "https://example.com/r.git") }},
		{"Rebase", func() error { return tr.repo.Rebase(ctx, "origin", "master") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), context.Canceled)
		})
	}
}
