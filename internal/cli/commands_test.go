package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/recipe"
)

func TestRunOptions(t *testing.T) {
	defer func(c string, o map[string]string) { optionsCompiler, optionsOverrides = c, o }(optionsCompiler, optionsOverrides)

	t.Run("gcc", func(t *testing.T) {
		out := captureOutput(t)
		optionsCompiler = build.CompilerGCC
		optionsOverrides = map[string]string{"fPIC": "True", "vectorization": "SSE4_2"}

		if err := runOptions(nil, nil); err != nil {
			t.Fatalf("runOptions() error = %v", err)
		}
		for _, want := range []string{recipe.DefPIC, "VCL_VECTORIZE_SSE4_2:BOOL", "AVX, AVX2, SSE4_2"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("visual studio", func(t *testing.T) {
		out := captureOutput(t)
		optionsCompiler = build.CompilerVisualStudio
		optionsOverrides = map[string]string{"fPIC": "True"}

		if err := runOptions(nil, nil); err != nil {
			t.Fatalf("runOptions() error = %v", err)
		}
		if strings.Contains(out.String(), recipe.DefPIC) {
			t.Errorf("PIC define listed for Visual Studio:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "(removed)") {
			t.Errorf("fPIC not marked removed:\n%s", out.String())
		}
	})

	t.Run("illegal value", func(t *testing.T) {
		discardOutput(t)
		optionsCompiler = build.CompilerGCC
		optionsOverrides = map[string]string{"vectorization": "AVX512"}

		err := runOptions(nil, nil)
		if !errors.Is(err, recipe.ErrInvalidOptionValue) {
			t.Errorf("runOptions() error = %v, want ErrInvalidOptionValue", err)
		}
	})
}

func TestRunInfo(t *testing.T) {
	dir := t.TempDir()
	set, err := recipe.DefaultModel().Resolve(build.CompilerGCC, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := build.WriteDescriptor(dir, build.NewPackageInfo(build.CompilerGCC, set)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib", "libvcl_core.a"), []byte("core"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := captureOutput(t)
	if err := runInfo(nil, []string{dir}); err != nil {
		t.Fatalf("runInfo() error = %v", err)
	}
	for _, want := range []string{
		"vcl " + recipe.Version,
		"-I" + filepath.Join(dir, "include", "vcl.core"),
		filepath.Join(dir, "include", "vcl.core") + " " + filepath.Join(dir, "include", "vcl.math"),
		"-lvcl_core -lvcl_math -lvcl_geometry",
		"libvcl_math.a, libvcl_geometry.a",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	discardOutput(t)
	if err := runInfo(nil, []string{t.TempDir()}); err == nil {
		t.Error("runInfo() should fail without a descriptor")
	}
}

func TestRunPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")
	if err := os.WriteFile(path, []byte("PROJECT(VisualComputingLibrary)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := captureOutput(t)
	for range 2 {
		if err := runPatch(nil, []string{path}); err != nil {
			t.Fatalf("runPatch() error = %v", err)
		}
	}
	if !strings.Contains(out.String(), "patched "+path) || !strings.Contains(out.String(), "already patched") {
		t.Errorf("output = %q", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), recipe.BuildInfoFile) != 1 {
		t.Errorf("patched file:\n%s", data)
	}

	discardOutput(t)
	missing := filepath.Join(t.TempDir(), "CMakeLists.txt")
	if err := os.WriteFile(missing, []byte("project(Other)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runPatch(nil, []string{missing}); !errors.Is(err, recipe.ErrAnchorNotFound) {
		t.Errorf("runPatch() error = %v, want ErrAnchorNotFound", err)
	}
}
