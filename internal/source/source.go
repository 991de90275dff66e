// Package source obtains the upstream VCL checkout with go-git.
package source

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/qntx/vclpkg/internal/logger"
)

var ErrRevisionNotFound = errors.New("revision not found")

// Fetch makes dir hold url at revision. An existing git checkout is reused
// and moved to revision; an existing plain directory is used as is.
// Clone progress is written to progress when it is not nil.
func Fetch(ctx context.Context, url, revision, dir string, progress io.Writer) error {
	repo, err := git.PlainOpen(dir)
	switch {
	case err == nil:
		logger.Logger.Debugw("reusing checkout", "dir", dir)
	case errors.Is(err, git.ErrRepositoryNotExists) && isDir(dir):
		logger.Logger.Debugw("using unversioned source tree", "dir", dir)
		return nil
	case errors.Is(err, git.ErrRepositoryNotExists):
		logger.Logger.Debugw("cloning", "url", url, "dir", dir)
		repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:      url,
			Progress: progress,
		})
		if err != nil {
			os.RemoveAll(dir)
			return errors.Wrapf(err, "clone %s", url)
		}
	default:
		return errors.Wrapf(err, "open %s", dir)
	}

	if revision == "" {
		return nil
	}
	return checkout(repo, revision)
}

// Head returns the commit hash checked out in dir.
func Head(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", dir)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "read HEAD")
	}
	return ref.Hash().String(), nil
}

func checkout(repo *git.Repository, revision string) error {
	hash, err := resolve(repo, revision)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "worktree")
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return errors.Wrapf(err, "checkout %s", revision)
	}
	logger.Logger.Debugw("checked out", "revision", revision, "hash", hash.String())
	return nil
}

// resolve accepts anything ResolveRevision does plus abbreviated hashes.
func resolve(repo *git.Repository, revision string) (plumbing.Hash, error) {
	if h, err := repo.ResolveRevision(plumbing.Revision(revision)); err == nil {
		return *h, nil
	}
	if !isHexPrefix(revision) {
		return plumbing.ZeroHash, errors.Wrapf(ErrRevisionNotFound, "%s", revision)
	}

	iter, err := repo.CommitObjects()
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(err, "list commits")
	}
	defer iter.Close()

	var (
		found plumbing.Hash
		n     int
	)
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), strings.ToLower(revision)) {
			found = c.Hash
			n++
		}
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, err
	}

	switch n {
	case 0:
		return plumbing.ZeroHash, errors.Wrapf(ErrRevisionNotFound, "%s", revision)
	case 1:
		return found, nil
	default:
		return plumbing.ZeroHash, errors.WithHint(
			errors.Newf("revision %s is ambiguous", revision),
			"use a longer hash")
	}
}

func isHexPrefix(s string) bool {
	if len(s) < 4 || len(s) > 40 {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
