package build

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/recipe"
)

// BuildInfo is the dependency information handed to the patched
// CMakeLists.txt through the generated build-info script.
type BuildInfo struct {
	EigenRoot   string
	IncludeDirs []string
	LibDirs     []string
}

var buildInfoTmpl = template.Must(template.New("buildinfo").Funcs(template.FuncMap{
	"path": filepath.ToSlash,
}).Parse(`# Generated by vclpkg for {{.Name}} {{.Version}}. Do not edit.

set(VCLPKG_EIGEN3_ROOT "{{path .Info.EigenRoot}}")
set(VCLPKG_INCLUDE_DIRS{{range .Info.IncludeDirs}} "{{path .}}"{{end}})
set(VCLPKG_LIB_DIRS{{range .Info.LibDirs}} "{{path .}}"{{end}})

macro(vclpkg_basic_setup)
    if(VCLPKG_INCLUDE_DIRS)
        include_directories(${VCLPKG_INCLUDE_DIRS})
    endif()
    if(VCLPKG_LIB_DIRS)
        link_directories(${VCLPKG_LIB_DIRS})
    endif()
    message(STATUS "vclpkg: Eigen3 at ${VCLPKG_EIGEN3_ROOT}")
endmacro()
`))

// NewBuildInfo collects the paths of resolved dependencies. eigen must be
// one of pkgs.
func NewBuildInfo(eigen *Package, pkgs []*Package) BuildInfo {
	inc, lib := CollectPaths(pkgs)
	return BuildInfo{EigenRoot: eigenRoot(eigen), IncludeDirs: inc, LibDirs: lib}
}

// Render returns the cmake script.
func (bi BuildInfo) Render() ([]byte, error) {
	var buf bytes.Buffer
	err := buildInfoTmpl.Execute(&buf, struct {
		Name, Version string
		Info          BuildInfo
	}{recipe.Name, recipe.Version, bi})
	return buf.Bytes(), err
}

// Write renders the script into dir and returns its path.
func (bi BuildInfo) Write(dir string) (string, error) {
	data, err := bi.Render()
	if err != nil {
		return "", errors.Wrap(err, "render build info")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}
	path := filepath.Join(dir, recipe.BuildInfoFile)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", errors.Wrap(err, "write build info")
	}
	return path, nil
}

// eigenRoot returns the directory holding the Eigen/ header tree, checking
// the layouts of a source archive and of an installed package.
func eigenRoot(p *Package) string {
	for _, dir := range []string{
		filepath.Join(p.Root, "include", "eigen3"),
		filepath.Join(p.Root, "include"),
		p.Root,
	} {
		if isDir(filepath.Join(dir, "Eigen")) {
			return dir
		}
	}
	return p.Include
}
