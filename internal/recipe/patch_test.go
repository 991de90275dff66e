package recipe_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qntx/vclpkg/internal/recipe"
)

const upstreamCMake = `CMAKE_MINIMUM_REQUIRED(VERSION 3.1)
PROJECT(VisualComputingLibrary)

SET(CMAKE_MODULE_PATH ${CMAKE_CURRENT_SOURCE_DIR}/cmake)
ADD_SUBDIRECTORY(libs)
`

func writeCMake(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPatch_InjectsAfterAnchor(t *testing.T) {
	path := writeCMake(t, upstreamCMake)

	changed, err := recipe.Patch(path)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(data)

	want := "PROJECT(VisualComputingLibrary)\n" +
		"include(${CMAKE_BINARY_DIR}/vclpkgbuildinfo.cmake)\n" +
		"vclpkg_basic_setup()\n" +
		"set(VCL_EIGEN_DIR ${VCLPKG_EIGEN3_ROOT})\n" +
		"\nSET(CMAKE_MODULE_PATH"
	assert.Contains(t, got, want)
	assert.True(t, strings.HasPrefix(got, "CMAKE_MINIMUM_REQUIRED(VERSION 3.1)\n"))
	assert.True(t, strings.HasSuffix(got, "ADD_SUBDIRECTORY(libs)\n"))
}

func TestPatch_Idempotent(t *testing.T) {
	path := writeCMake(t, upstreamCMake)

	_, err := recipe.Patch(path)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := recipe.Patch(path)
	require.NoError(t, err)
	assert.False(t, changed)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, strings.Count(string(second), recipe.PatchStatements[0]))
}

func TestPatch_AnchorNotFound(t *testing.T) {
	path := writeCMake(t, "PROJECT(SomethingElse)\n")

	changed, err := recipe.Patch(path)
	require.Error(t, err)
	assert.False(t, changed)
	assert.True(t, errors.Is(err, recipe.ErrAnchorNotFound))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PROJECT(SomethingElse)\n", string(data), "file must not be touched")
}

func TestPatch_MissingFile(t *testing.T) {
	_, err := recipe.Patch(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPatch_PreservesMode(t *testing.T) {
	path := writeCMake(t, upstreamCMake)
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := recipe.Patch(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPatchText(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		wantChanged bool
		wantCount   int
	}{
		{"plain", upstreamCMake, true, 1},
		{"only first anchor", "PROJECT(VisualComputingLibrary)\nPROJECT(VisualComputingLibrary)\n", true, 1},
		{"already patched", recipe.PatchBlock() + "\n", false, 1},
		{"already patched crlf", strings.ReplaceAll(recipe.PatchBlock(), "\n", "\r\n") + "\r\n", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed, err := recipe.PatchText(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantCount, strings.Count(out, recipe.PatchBlock()))
		})
	}
}

func TestPatchText_KeepsCRLF(t *testing.T) {
	src := "cmake_minimum_required(VERSION 3.3)\r\nPROJECT(VisualComputingLibrary)\r\nadd_subdirectory(libs)\r\n"

	out, changed, err := recipe.PatchText(src)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(out, "\r\n"), "mixed line endings:\n%q", out)
	assert.Contains(t, out, strings.ReplaceAll(recipe.PatchBlock(), "\n", "\r\n")+"\r\nadd_subdirectory(libs)")

	again, changed, err := recipe.PatchText(out)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}
