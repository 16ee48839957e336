// Package fsbridge adapts the project's native filesystem abstraction to the
// go-billy interfaces go-git stores repositories on.
package fsbridge

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// ToBillyFilesystem unwraps an fs.Filesystem into the billy.Filesystem it is
// backed by. Only billy-backed filesystems (OS or in-memory, from fs/billy)
// can host a repository.
//
//nolint:ireturn // billy.Filesystem is the adapter target.
func ToBillyFilesystem(fsys fs.Filesystem) (billy.Filesystem, error) {
	billyFS, ok := fsys.(*fsb.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be billy-backed (fs/billy), got %T", fsys)
	}

	return billyFS.Raw(), nil
}

// NewStorage builds go-git object storage over the given filesystem with an
// LRU object cache of the requested size.
func NewStorage(billyFS billy.Filesystem, cacheSize int) *filesystem.Storage {
	if cacheSize <= 0 {
		cacheSize = 100
	}

	return filesystem.NewStorage(billyFS, cache.NewObjectLRU(cache.FileSize(cacheSize)))
}
