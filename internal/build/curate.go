package build

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/logger"
	"github.com/qntx/vclpkg/internal/recipe"
)

// Roots locates the trees artifact rules copy from.
type Roots struct {
	Build  string
	Source string
}

func (r Roots) dir(root recipe.Root) string {
	if root == recipe.SourceRoot {
		return r.Source
	}
	return r.Build
}

// Curate applies rules in order and returns how many files each one copied.
// A missing source directory copies nothing and is not an error.
func Curate(rules []recipe.Rule, roots Roots, pkgDir string) ([]int, error) {
	counts := make([]int, len(rules))
	for i, r := range rules {
		n, err := curate(r, roots, pkgDir)
		if err != nil {
			return counts, errors.Wrapf(err, "copy %s", r)
		}
		counts[i] = n
	}
	return counts, nil
}

func curate(r recipe.Rule, roots Roots, pkgDir string) (int, error) {
	src := filepath.Join(roots.dir(r.Root), filepath.FromSlash(r.Dir))
	if !isDir(src) {
		logger.Logger.Debugw("artifact source missing", "rule", r.String(), "dir", src)
		return 0, nil
	}
	dst := filepath.Join(pkgDir, filepath.FromSlash(r.Dst))

	var n int
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(r.Pattern, d.Name())
		if err != nil || !ok {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := copyFile(path, target); err != nil {
			return err
		}
		logger.Logger.Debugw("copied", "from", path, "to", target)
		n++
		return nil
	})
	return n, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

// MissingLibs returns the descriptor libraries absent from the package.
func MissingLibs(d recipe.Descriptor, pkgDir string) []string {
	var missing []string
	for _, lib := range d.Libs {
		found := false
		for _, dir := range d.LibDirs {
			if _, err := os.Stat(filepath.Join(pkgDir, filepath.FromSlash(dir), lib)); err == nil {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, lib)
		}
	}
	return missing
}
