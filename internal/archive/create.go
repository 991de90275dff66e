package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/ulikunitz/xz"
)

// Name returns the path of an archive of dir built for goos/goarch. The
// archive sits next to dir; stem defaults to dir's base name.
func Name(dir, stem, goos, goarch string, f Format) string {
	if stem == "" {
		stem = filepath.Base(dir)
	}
	return filepath.Join(filepath.Dir(dir), fmt.Sprintf("%s-%s-%s%s", stem, goos, goarch, f.Ext()))
}

// packer appends filesystem entries to an archive.
type packer interface {
	add(name string, info fs.FileInfo, path string) error
	io.Closer
}

// Create packs the directory src into dest. The format follows dest's
// extension; entries are rooted at src's base name.
func Create(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Newf("%s: not a directory", src)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	err = pack(f, src, Detect(dest))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return errors.Wrapf(err, "create %s", dest)
	}
	return nil
}

// pack writes src to w. Closers run innermost first.
func pack(w io.Writer, src string, format Format) error {
	var (
		p       packer
		closers []io.Closer
	)
	switch format {
	case Zip:
		p = zipPacker{zip.NewWriter(w)}
	case TarXz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return err
		}
		closers = append(closers, xw)
		p = tarPacker{tar.NewWriter(xw)}
	default:
		gw := gzip.NewWriter(w)
		closers = append(closers, gw)
		p = tarPacker{tar.NewWriter(gw)}
	}
	closers = append([]io.Closer{p}, closers...)

	err := walkTree(src, p.add)
	for _, c := range closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// walkTree calls add for every entry below root with a slash-separated name
// that starts with root's base name.
func walkTree(root string, add func(string, fs.FileInfo, string) error) error {
	parent := filepath.Dir(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		return add(filepath.ToSlash(rel), info, path)
	})
}

type tarPacker struct{ tw *tar.Writer }

func (p tarPacker) add(name string, info fs.FileInfo, path string) error {
	var target string
	if info.Mode()&fs.ModeSymlink != 0 {
		var err error
		if target, err = os.Readlink(path); err != nil {
			return err
		}
	}
	hdr, err := tar.FileInfoHeader(info, target)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := p.tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return copyInto(p.tw, path)
}

func (p tarPacker) Close() error { return p.tw.Close() }

type zipPacker struct{ zw *zip.Writer }

func (p zipPacker) add(name string, info fs.FileInfo, path string) error {
	if info.IsDir() {
		_, err := p.zw.Create(name + "/")
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := p.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	return copyInto(w, path)
}

func (p zipPacker) Close() error { return p.zw.Close() }

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
