package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qntx/vclpkg/internal/recipe"
)

func TestEigenRoot(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
		want string
	}{
		{"source archive", []string{"Eigen"}, "."},
		{"include", []string{"include/Eigen"}, "include"},
		{"installed", []string{"include/eigen3/Eigen", "lib"}, "include/eigen3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			mkdirs(t, root, tt.dirs...)
			p := &Package{Source: root, Dir: root}
			if err := p.Ensure(t.Context(), nil); err != nil {
				t.Fatal(err)
			}
			if got, want := eigenRoot(p), filepath.Join(root, tt.want); got != want {
				t.Errorf("eigenRoot() = %q, want %q", got, want)
			}
		})
	}
}

func TestBuildInfo_Render(t *testing.T) {
	bi := BuildInfo{
		EigenRoot:   "/deps/eigen",
		IncludeDirs: []string{"/deps/eigen", "/deps/extra/include"},
		LibDirs:     []string{"/deps/extra/lib"},
	}

	data, err := bi.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		recipe.Name + " " + recipe.Version,
		`set(VCLPKG_EIGEN3_ROOT "/deps/eigen")`,
		`set(VCLPKG_INCLUDE_DIRS "/deps/eigen" "/deps/extra/include")`,
		`set(VCLPKG_LIB_DIRS "/deps/extra/lib")`,
		"macro(vclpkg_basic_setup)",
		"endmacro()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

func TestBuildInfo_Write(t *testing.T) {
	eigen := t.TempDir()
	mkdirs(t, eigen, "Eigen")
	p, err := Parse(eigen)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Ensure(t.Context(), nil); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "build")
	path, err := NewBuildInfo(p, []*Package{p}).Write(dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, recipe.BuildInfoFile) {
		t.Errorf("Write() = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), filepath.ToSlash(eigen)) {
		t.Errorf("build info does not mention %s:\n%s", eigen, data)
	}
}
