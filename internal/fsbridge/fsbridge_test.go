package fsbridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBillyFilesystem(t *testing.T) {
	t.Run("unwraps a billy-backed filesystem", func(t *testing.T) {
		memFS := memfs.New()
		wrapped := fsb.NewFS(memFS)

		result, err := ToBillyFilesystem(wrapped)
		require.NoError(t, err)
		assert.Equal(t, memFS, result)
	})

	t.Run("rejects other implementations", func(t *testing.T) {
		var other fs.Filesystem = &stubFilesystem{}

		result, err := ToBillyFilesystem(other)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "billy-backed")
	})
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name      string
		cacheSize int
	}{
		{name: "explicit cache size", cacheSize: 500},
		{name: "zero falls back to a sane cache", cacheSize: 0},
		{name: "negative falls back to a sane cache", cacheSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFS := memfs.New()
			storage := NewStorage(memFS, tt.cacheSize)
			require.NotNil(t, storage)
			assert.Equal(t, memFS, storage.Filesystem())
		})
	}
}

// stubFilesystem satisfies fs.Filesystem without being billy-backed.
type stubFilesystem struct{}

//nolint:ireturn // tests can return interfaces for mocks
func (m *stubFilesystem) Create(name string) (fs.File, error) { return nil, nil }

//nolint:ireturn // tests can return interfaces for mocks
func (m *stubFilesystem) Open(name string) (fs.File, error) { return nil, nil }

//nolint:ireturn // tests can return interfaces for mocks
func (m *stubFilesystem) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	return nil, nil
}
func (m *stubFilesystem) ReadFile(name string) ([]byte, error)                       { return nil, nil }
func (m *stubFilesystem) WriteFile(name string, data []byte, perm os.FileMode) error { return nil }
func (m *stubFilesystem) Stat(name string) (os.FileInfo, error)                      { return nil, nil }
func (m *stubFilesystem) Rename(oldname, newname string) error                       { return nil }
func (m *stubFilesystem) Remove(name string) error                                   { return nil }
func (m *stubFilesystem) RemoveAll(path string) error                                { return nil }
func (m *stubFilesystem) ReadDir(name string) ([]os.FileInfo, error)                 { return nil, nil }
func (m *stubFilesystem) MkdirAll(path string, perm os.FileMode) error               { return nil }
func (m *stubFilesystem) Walk(root string, fn filepath.WalkFunc) error               { return nil }
func (m *stubFilesystem) TempDir(dir, pattern string) (string, error)                { return "", nil }
func (m *stubFilesystem) GetAbs(path string) (string, error)                         { return "", nil }
func (m *stubFilesystem) Exists(path string) (bool, error)                           { return false, nil }
func (m *stubFilesystem) Symlink(target, link string) error                          { return nil }
