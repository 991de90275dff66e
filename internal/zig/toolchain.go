// Package zig manages cached Zig toolchains used as a cross C/C++ compiler.
package zig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/logger"
)

const defaultVersion = "master"

// Ensure returns the installation directory of version, downloading it first
// when it is not cached. wrap may be nil.
func Ensure(ctx context.Context, version string, wrap archive.ReaderFunc) (string, error) {
	if version == "" {
		version = defaultVersion
	}
	dir := Path(version)
	if isInstalled(dir) {
		return dir, nil
	}

	logger.Logger.Debugw("fetching zig index", "url", indexURL)
	idx, err := fetchIndex(ctx, indexURL)
	if err != nil {
		return "", errors.Wrap(err, "fetch zig index")
	}
	build, err := idx.lookup(version, hostKey())
	if err != nil {
		return "", err
	}

	logger.Logger.Debugw("downloading zig",
		"version", version, "resolved", idx.resolvedVersion(version), "url", build.Tarball)
	if err := install(ctx, build, dir, wrap); err != nil {
		os.RemoveAll(dir)
		return "", errors.Wrapf(err, "zig %s", version)
	}
	return dir, nil
}

// install downloads b into dir and checks its digest when the index
// publishes one.
func install(ctx context.Context, b Build, dir string, wrap archive.ReaderFunc) error {
	sum := sha256.New()
	tee := func(r io.Reader, total int64) io.Reader {
		r = io.TeeReader(r, sum)
		if wrap != nil {
			r = wrap(r, total)
		}
		return r
	}
	if err := archive.Download(ctx, b.Tarball, dir, tee); err != nil {
		return err
	}
	if err := checkSum(sum, b.Shasum); err != nil {
		return err
	}
	if !isInstalled(dir) {
		return errors.New("binary missing after extraction")
	}
	return nil
}

func checkSum(h hash.Hash, want string) error {
	if want == "" {
		return nil
	}
	if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, want) {
		return errors.WithDetailf(errors.New("checksum mismatch"), "got %s, want %s", got, want)
	}
	return nil
}

// Path returns the cache path for a Zig version.
func Path(version string) string {
	return filepath.Join(cacheRoot(), version)
}

// Bin returns the zig executable inside an installation directory.
func Bin(dir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "zig.exe")
	}
	return filepath.Join(dir, "zig")
}

// Installed lists the cached versions. A missing cache is not an error.
func Installed() ([]string, error) {
	entries, err := os.ReadDir(cacheRoot())
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(err, "read zig cache")
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	return versions, nil
}

func Remove(version string) error { return os.RemoveAll(Path(version)) }

func RemoveAll() error { return os.RemoveAll(cacheRoot()) }

func isInstalled(dir string) bool {
	info, err := os.Stat(Bin(dir))
	return err == nil && !info.IsDir()
}

func cacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "vclpkg", "zig")
}
