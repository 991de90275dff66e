package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/logger"
)

// Package is a dependency: a local directory or a downloaded archive.
type Package struct {
	Source string
	URL    string // empty for local directories
	Dir    string // cache entry name, or the absolute local path

	// Resolved by Ensure.
	Root    string
	Include string
	Lib     string
}

// releaseRE matches owner/repo@version/asset GitHub release shorthands.
var releaseRE = regexp.MustCompile(`^([^/]+)/([^@]+)@([^/]+)/(.+)$`)

// Parse parses a package source: an http(s) archive URL, an existing local
// directory, or owner/repo@version/asset for a GitHub release asset.
func Parse(source string) (*Package, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &Package{Source: source, URL: source, Dir: hashKey(source)}, nil
	}
	if isDir(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			return nil, err
		}
		return &Package{Source: source, Dir: abs}, nil
	}
	if m := releaseRE.FindStringSubmatch(source); m != nil {
		owner, repo, version, asset := m[1], m[2], m[3], m[4]
		return &Package{
			Source: source,
			URL:    "https://github.com/" + path.Join(owner, repo, "releases/download", version, asset),
			Dir:    strings.Join([]string{owner, repo, version, archive.TrimExt(asset)}, "-"),
		}, nil
	}
	return nil, errors.WithHint(
		errors.Newf("invalid package: %q", source),
		"use a directory, an http(s) archive URL, or owner/repo@version/asset")
}

// Local reports whether the package is a directory on disk.
func (p *Package) Local() bool { return p.URL == "" }

// Ensure downloads and extracts the package if it is not cached, then
// resolves its include and lib directories. wrap may be nil.
func (p *Package) Ensure(ctx context.Context, wrap archive.ReaderFunc) error {
	p.Root = p.Dir
	if !p.Local() {
		p.Root = filepath.Join(CacheDir(), p.Dir)
	}

	if !p.Local() && !isDir(p.Root) {
		logger.Logger.Debugw("fetching package", "source", p.Source, "url", p.URL)
		if err := archive.Download(ctx, p.URL, p.Root, wrap); err != nil {
			os.RemoveAll(p.Root)
			return errors.Wrapf(err, "package %s", p.Source)
		}
	}
	return p.resolve()
}

// resolve uses <root>/include when present and the root itself otherwise,
// which covers header-only source archives such as Eigen.
func (p *Package) resolve() error {
	if !isDir(p.Root) {
		return errors.Newf("%s: %s is not a directory", p.Source, p.Root)
	}
	p.Include = p.Root
	if inc := filepath.Join(p.Root, "include"); isDir(inc) {
		p.Include = inc
	}
	p.Lib = ""
	if lib := filepath.Join(p.Root, "lib"); isDir(lib) {
		p.Lib = lib
	}
	return nil
}

// Reporter returns the progress hook for a named download. A nil Reporter,
// or one returning nil, disables reporting.
type Reporter func(name string) archive.ReaderFunc

func (r Reporter) wrap(name string) archive.ReaderFunc {
	if r == nil {
		return nil
	}
	return r(name)
}

// EnsureAll parses and fetches packages concurrently. The first failure
// cancels the remaining downloads.
func EnsureAll(ctx context.Context, sources []string, progress Reporter) ([]*Package, error) {
	pkgs := make([]*Package, 0, len(sources))
	for _, s := range sources {
		p, err := Parse(s)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pkgs {
		g.Go(func() error { return p.Ensure(gctx, progress.wrap(p.Source)) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// CollectPaths returns include and lib directories.
func CollectPaths(pkgs []*Package) (inc, lib []string) {
	for _, p := range pkgs {
		if p.Include != "" {
			inc = append(inc, p.Include)
		}
		if p.Lib != "" {
			lib = append(lib, p.Lib)
		}
	}
	return
}

// ----------------------------------------------------------------------------
// Internal
// ----------------------------------------------------------------------------

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hashKey names the cache entry of a URL: a digest prefix keeps entries
// unique and the archive stem keeps them readable.
func hashKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	stem := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		stem = u.Path
	}
	return "url-" + hex.EncodeToString(sum[:8]) + "-" + archive.TrimExt(path.Base(stem))
}
