package recipe

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// BuildInfoFile is the generated cmake script included by the patched build.
const BuildInfoFile = "vclpkgbuildinfo.cmake"

// PatchAnchor is the upstream project declaration the setup is injected after.
const PatchAnchor = "PROJECT(VisualComputingLibrary)"

// PatchStatements follow the anchor, one per line.
var PatchStatements = []string{
	"include(${CMAKE_BINARY_DIR}/" + BuildInfoFile + ")",
	"vclpkg_basic_setup()",
	"set(VCL_EIGEN_DIR ${VCLPKG_EIGEN3_ROOT})",
}

// PatchBlock returns the anchor followed by the injected statements.
func PatchBlock() string {
	return PatchAnchor + "\n" + strings.Join(PatchStatements, "\n")
}

// Patch injects the dependency setup after the first PatchAnchor in the file
// at path. It reports whether the file was changed; a file that already
// carries the block is left untouched.
func Patch(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrap(err, "patch")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, "patch")
	}

	out, changed, err := PatchText(string(data))
	if err != nil {
		return false, errors.Wrapf(err, "patch %s", path)
	}
	if !changed {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, errors.Wrap(err, "patch")
	}
	return true, nil
}

// PatchText is Patch on an in-memory build description.
func PatchText(src string) (string, bool, error) {
	if !strings.Contains(src, PatchAnchor) {
		return "", false, errors.WithHint(ErrAnchorNotFound,
			"the upstream CMakeLists.txt changed; update the recipe anchor")
	}
	if isPatched(src) {
		return src, false, nil
	}
	block := PatchBlock()
	if eol := lineEnding(src); eol != "\n" {
		block = strings.ReplaceAll(block, "\n", eol)
	}
	return strings.Replace(src, PatchAnchor, block, 1), true, nil
}

// lineEnding returns the line terminator following the first anchor.
func lineEnding(src string) string {
	rest := src[strings.Index(src, PatchAnchor)+len(PatchAnchor):]
	if strings.HasPrefix(rest, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// isPatched tolerates CRLF line endings written back by editors.
func isPatched(src string) bool {
	return strings.Contains(strings.ReplaceAll(src, "\r\n", "\n"), PatchBlock())
}
