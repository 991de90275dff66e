package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ulikunitz/xz"

	"github.com/qntx/vclpkg/internal/logger"
)

const defaultPerm = 0o755

var ErrPathTraversal = errors.New("path traversal detected")

// member is one archive entry independent of the container. body is only
// valid inside the visit callback that received it.
type member struct {
	name string
	mode fs.FileMode
	link string
	body func() (io.ReadCloser, error)
}

// walker visits every member of an archive in order. It may be called more
// than once.
type walker func(visit func(member) error) error

// Extract unpacks an archive into destDir. A single top-level directory
// shared by every entry is stripped.
func Extract(archivePath, destDir string) error {
	var walk walker
	switch Detect(archivePath) {
	case Zip:
		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			return errors.Wrap(err, "open zip")
		}
		defer zr.Close()
		walk = zipWalker(&zr.Reader)
	case TarXz:
		walk = tarWalker(archivePath, func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) })
	default:
		walk = tarWalker(archivePath, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) })
	}
	return unpack(walk, destDir)
}

func unpack(walk walker, destDir string) error {
	var names []string
	if err := walk(func(m member) error {
		names = append(names, m.name)
		return nil
	}); err != nil {
		return err
	}
	strip := commonPrefix(names)

	// Links are made last so that copies can fall back to their targets.
	var links [][2]string
	err := walk(func(m member) error {
		rel := strings.TrimPrefix(strings.TrimPrefix(m.name, "./"), strip)
		if rel == "" {
			return nil
		}
		path, err := safePath(destDir, rel)
		if err != nil {
			return err
		}

		switch {
		case m.mode.IsDir():
			return os.MkdirAll(path, defaultPerm)
		case m.mode&fs.ModeSymlink != 0:
			links = append(links, [2]string{m.link, path})
			return nil
		case m.mode.IsRegular():
			rc, err := m.body()
			if err != nil {
				return err
			}
			defer rc.Close()
			return writeFile(path, rc, m.mode.Perm())
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, l := range links {
		link(l[0], l[1])
	}
	return nil
}

// link creates path pointing at target, or copies the target where symlinks
// are unavailable.
func link(target, path string) {
	if err := os.MkdirAll(filepath.Dir(path), defaultPerm); err != nil {
		logger.Logger.Debugw("dropped symlink", "link", path, "error", err)
		return
	}
	_ = os.Remove(path)
	if os.Symlink(target, path) == nil {
		return
	}
	if err := copyFile(filepath.Join(filepath.Dir(path), target), path); err != nil {
		logger.Logger.Debugw("dropped symlink", "link", path, "target", target, "error", err)
	}
}

func zipWalker(zr *zip.Reader) walker {
	return func(visit func(member) error) error {
		for _, f := range zr.File {
			m := member{name: f.Name, mode: f.Mode(), body: f.Open}
			if m.mode&fs.ModeSymlink != 0 {
				target, err := readAll(f.Open)
				if err != nil {
					return err
				}
				m.link = target
			}
			if err := visit(m); err != nil {
				return err
			}
		}
		return nil
	}
}

// tarWalker reopens the file on every walk since tar streams cannot rewind
// through a decompressor.
func tarWalker(path string, decompress func(io.Reader) (io.Reader, error)) walker {
	return func(visit func(member) error) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		dr, err := decompress(f)
		if err != nil {
			return errors.Wrap(err, "decompress")
		}
		tr := tar.NewReader(dr)
		body := func() (io.ReadCloser, error) { return io.NopCloser(tr), nil }

		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "read tar")
			}
			m := member{name: hdr.Name, mode: hdr.FileInfo().Mode(), link: hdr.Linkname, body: body}
			if err := visit(m); err != nil {
				return err
			}
		}
	}
}

func readAll(open func() (io.ReadCloser, error)) (string, error) {
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	return string(b), err
}

// commonPrefix returns "dir/" when every entry lives below the same top-level
// directory, and "" otherwise.
func commonPrefix(names []string) string {
	var top string
	for _, name := range names {
		name = strings.TrimPrefix(name, "./")
		if name == "" {
			continue
		}
		head, _, found := strings.Cut(name, "/")
		switch {
		case !found:
			return ""
		case top == "":
			top = head
		case head != top:
			return ""
		}
	}
	if top == "" {
		return ""
	}
	return top + "/"
}

// safePath joins name below destDir and rejects anything that escapes it.
func safePath(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.Wrapf(ErrPathTraversal, "%s", name)
	}
	return path, nil
}

func writeFile(path string, r io.Reader, mode fs.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), defaultPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, r)
	return err
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
	return writeFile(dst, in, info.Mode().Perm())
}
