package build

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// CachedPkg describes one entry of the package cache.
type CachedPkg struct {
	Name    string
	Path    string
	Size    int64
	Include int // files below include/, or the whole tree for header-only packages
	Lib     int
}

// CacheDir returns the directory holding downloaded packages.
func CacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "vclpkg", "pkg")
	}
	return filepath.Join(os.TempDir(), "vclpkg", "pkg")
}

// ListCached returns every cached package with its size and file counts.
func ListCached() ([]CachedPkg, error) {
	entries, err := os.ReadDir(CacheDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read package cache")
	}

	var pkgs []CachedPkg
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := CachedPkg{Name: e.Name(), Path: filepath.Join(CacheDir(), e.Name())}
		p.Size = dirSize(p.Path)

		if inc := filepath.Join(p.Path, "include"); isDir(inc) {
			p.Include = countFiles(inc)
		} else {
			p.Include = countFiles(p.Path)
		}
		p.Lib = countFiles(filepath.Join(p.Path, "lib"))
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// RemoveCached deletes one cached package by name.
func RemoveCached(name string) error {
	if name == "" || filepath.Base(name) != name {
		return errors.Newf("invalid package name %q", name)
	}
	return os.RemoveAll(filepath.Join(CacheDir(), name))
}

// RemoveAllCached deletes the whole package cache.
func RemoveAllCached() error {
	return os.RemoveAll(CacheDir())
}

func dirSize(root string) int64 {
	var size int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

func countFiles(root string) int {
	var n int
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}
