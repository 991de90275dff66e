package recipe

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Descriptor is what consumers link against. Paths are relative to the
// package root. Changing any value breaks every consumer.
type Descriptor struct {
	IncludeDirs []string `toml:"include-dirs"`
	Libs        []string `toml:"libs"`
	LibDirs     []string `toml:"lib-dirs"`
}

// ConsumerDescriptor returns the published descriptor. Each call returns
// fresh slices.
func ConsumerDescriptor() Descriptor {
	return Descriptor{
		IncludeDirs: []string{"include/vcl.core", "include/vcl.math", "include/vcl.geometry"},
		Libs:        []string{"libvcl_core.a", "libvcl_math.a", "libvcl_geometry.a"},
		LibDirs:     []string{"lib"},
	}
}

// Abs returns the descriptor with directories joined onto root.
func (d Descriptor) Abs(root string) Descriptor {
	return Descriptor{
		IncludeDirs: joinAll(root, d.IncludeDirs),
		Libs:        append([]string(nil), d.Libs...),
		LibDirs:     joinAll(root, d.LibDirs),
	}
}

// LinkNames strips the lib prefix and archive suffix, giving -l names.
func (d Descriptor) LinkNames() []string {
	names := make([]string, len(d.Libs))
	for i, lib := range d.Libs {
		name := strings.TrimPrefix(lib, "lib")
		names[i] = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return names
}

// Cflags returns compiler flags for a package installed at root.
func (d Descriptor) Cflags(root string) string {
	return joinPrefixed("-I", joinAll(root, d.IncludeDirs))
}

// Libflags returns linker flags for a package installed at root.
func (d Descriptor) Libflags(root string) string {
	parts := appendPrefixed(nil, "-L", joinAll(root, d.LibDirs))
	parts = appendPrefixed(parts, "-l", d.LinkNames())
	return strings.Join(parts, " ")
}

// PkgConfig renders a pkg-config file for a package installed at root.
func (d Descriptor) PkgConfig(root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "prefix=%s\n\n", filepath.ToSlash(root))
	fmt.Fprintf(&b, "Name: %s\n", Name)
	fmt.Fprintf(&b, "Description: %s\n", Description)
	fmt.Fprintf(&b, "Version: %s\n", Version)
	fmt.Fprintf(&b, "Cflags: %s\n", joinPrefixed("-I", prefixed(d.IncludeDirs)))
	libs := appendPrefixed(nil, "-L", prefixed(d.LibDirs))
	libs = appendPrefixed(libs, "-l", d.LinkNames())
	fmt.Fprintf(&b, "Libs: %s\n", strings.Join(libs, " "))
	return b.String()
}

func prefixed(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = "${prefix}/" + d
	}
	return out
}

func joinAll(root string, dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Join(root, filepath.FromSlash(d))
	}
	return out
}

func joinPrefixed(prefix string, items []string) string {
	return strings.Join(appendPrefixed(nil, prefix, items), " ")
}

func appendPrefixed(dst []string, prefix string, items []string) []string {
	for _, item := range items {
		dst = append(dst, prefix+item)
	}
	return dst
}
