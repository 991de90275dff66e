// Package archive fetches and unpacks dependency archives and packs the
// finished package directory for distribution.
package archive

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Format is an archive container plus compression.
type Format int

const (
	TarGz Format = iota
	TarXz
	Zip
)

// suffixes lists the recognised file name endings per format. The first one
// is canonical.
var suffixes = map[Format][]string{
	TarGz: {".tar.gz", ".tgz"},
	TarXz: {".tar.xz", ".txz"},
	Zip:   {".zip"},
}

func (f Format) Ext() string { return suffixes[f][0] }

func (f Format) String() string { return f.Ext()[1:] }

// Detect guesses the format from a file name or URL. Unknown names are
// treated as gzip tarballs.
func Detect(name string) Format {
	lower := strings.ToLower(name)
	for _, f := range []Format{Zip, TarXz, TarGz} {
		for _, s := range suffixes[f] {
			if strings.HasSuffix(lower, s) {
				return f
			}
		}
	}
	return TarGz
}

// ForOS returns the conventional format for goos.
func ForOS(goos string) Format {
	if goos == "windows" {
		return Zip
	}
	return TarGz
}

// ParseFormat accepts any recognised suffix, with or without the leading dot.
func ParseFormat(s string) (Format, error) {
	want := "." + strings.TrimPrefix(strings.ToLower(s), ".")
	for f, list := range suffixes {
		for _, ext := range list {
			if ext == want {
				return f, nil
			}
		}
	}
	return 0, errors.Newf("unknown archive format %q", s)
}

// TrimExt removes a recognised archive suffix from name.
func TrimExt(name string) string {
	lower := strings.ToLower(name)
	for _, list := range suffixes {
		for _, ext := range list {
			if strings.HasSuffix(lower, ext) {
				return name[:len(name)-len(ext)]
			}
		}
	}
	return name
}
