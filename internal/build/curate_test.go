package build

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/qntx/vclpkg/internal/recipe"
)

func TestCurate(t *testing.T) {
	work := t.TempDir()
	roots := Roots{Build: filepath.Join(work, "build"), Source: filepath.Join(work, "src")}
	writeFiles(t, work, map[string]string{
		"build/lib/libvcl_core.a":                   "core",
		"build/lib/Release/libvcl_math.a":           "math",
		"build/lib/libvcl_core.so":                  "shared",
		"build/libs/vcl.core/vcl/config/config.h":   "cfg",
		"build/libs/vcl.core/vcl/config/other.h":    "other",
		"src/libs/vcl.core/vcl/core/contract.h":     "contract",
		"src/libs/vcl.core/vcl/core/contract.cpp":   "impl",
		"src/libs/vcl.geometry/vcl/geometry/cell.h": "cell",
	})
	pkg := filepath.Join(work, "package")

	counts, err := Curate(recipe.Artifacts, roots, pkg)
	if err != nil {
		t.Fatalf("Curate() error = %v", err)
	}
	if want := []int{2, 2, 1}; !slices.Equal(counts, want) {
		t.Errorf("Curate() = %v, want %v", counts, want)
	}

	for _, rel := range []string{
		"lib/libvcl_core.a",
		"lib/Release/libvcl_math.a",
		"include/vcl.core/vcl/core/contract.h",
		"include/vcl.geometry/vcl/geometry/cell.h",
		"include/vcl.core/vcl/config/config.h",
	} {
		if _, err := os.Stat(filepath.Join(pkg, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s not packaged: %v", rel, err)
		}
	}
	for _, rel := range []string{
		"lib/libvcl_core.so",
		"include/vcl.core/vcl/core/contract.cpp",
		"include/vcl.core/vcl/config/other.h",
	} {
		if _, err := os.Stat(filepath.Join(pkg, filepath.FromSlash(rel))); err == nil {
			t.Errorf("%s should not be packaged", rel)
		}
	}
}

func TestCurate_MissingRoot(t *testing.T) {
	work := t.TempDir()
	roots := Roots{Build: filepath.Join(work, "nope"), Source: filepath.Join(work, "nope")}

	counts, err := Curate(recipe.Artifacts, roots, filepath.Join(work, "package"))
	if err != nil {
		t.Fatalf("Curate() error = %v", err)
	}
	if !slices.Equal(counts, []int{0, 0, 0}) {
		t.Errorf("Curate() = %v, want zeros", counts)
	}
}

func TestCopyFile_KeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	work := t.TempDir()
	src := filepath.Join(work, "tool")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(work, "out", "tool")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("mode = %v, want executable", info.Mode())
	}
}

func TestMissingLibs(t *testing.T) {
	pkg := t.TempDir()
	writeFiles(t, pkg, map[string]string{
		"lib/libvcl_core.a":     "core",
		"lib/libvcl_geometry.a": "geometry",
	})

	got := MissingLibs(recipe.ConsumerDescriptor(), pkg)
	if !slices.Equal(got, []string{"libvcl_math.a"}) {
		t.Errorf("MissingLibs() = %v, want [libvcl_math.a]", got)
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
