package build

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/recipe"
	"github.com/qntx/vclpkg/internal/zig"
)

// ----------------------------------------------------------------------------
// Compiler
// ----------------------------------------------------------------------------

// Compiler identifiers accepted in Options.Compiler.
const (
	CompilerGCC          = "gcc"
	CompilerClang        = "clang"
	CompilerAppleClang   = "apple-clang"
	CompilerVisualStudio = recipe.PICManagedToolchain
	CompilerZig          = "zig"
)

// Compilers lists the known compiler identifiers.
var Compilers = []string{CompilerGCC, CompilerClang, CompilerAppleClang, CompilerVisualStudio, CompilerZig}

// DefaultCompiler returns the native compiler conventionally used on goos.
func DefaultCompiler(goos string) string {
	switch goos {
	case "windows":
		return CompilerVisualStudio
	case "darwin":
		return CompilerAppleClang
	default:
		return CompilerGCC
	}
}

// ----------------------------------------------------------------------------
// Defaults
// ----------------------------------------------------------------------------

const (
	DefaultSourceDir  = "vcl"
	DefaultBuildDir   = "build"
	DefaultPackageDir = "package"
	DefaultBuildType  = "Release"

	// DefaultEigen is the Eigen3 release matching recipe.Requires.
	DefaultEigen = "https://gitlab.com/libeigen/eigen/-/archive/3.3.3/eigen-3.3.3.tar.gz"
)

// ----------------------------------------------------------------------------
// Options
// ----------------------------------------------------------------------------

// Options configures one packaging run.
type Options struct {
	// Toolchain
	Compiler   string
	ZigVersion string
	OS         string
	Arch       string
	Target     string

	// Recipe option overrides, e.g. vectorization=AVX2.
	Overrides map[string]string

	// Source
	Source    string
	Revision  string
	SourceDir string

	// Output
	BuildDir   string
	PackageDir string
	Pack       bool
	PackFormat string

	// CMake
	Generator string
	BuildType string
	Jobs      int

	// Dependencies
	Eigen string

	Interactive bool
	Verbose     bool
}

// Normalize applies defaults for unset fields.
func (o *Options) Normalize() {
	if o.OS == "" {
		o.OS = runtime.GOOS
	}
	if o.Arch == "" {
		o.Arch = runtime.GOARCH
	}
	if o.Compiler == "" {
		o.Compiler = DefaultCompiler(o.OS)
	}
	if o.Source == "" {
		o.Source = recipe.URL
	}
	if o.Revision == "" {
		o.Revision = recipe.Version
	}
	if o.BuildType == "" {
		o.BuildType = DefaultBuildType
	}
	if o.Eigen == "" {
		o.Eigen = DefaultEigen
	}
	o.SourceDir = filepath.Clean(or(o.SourceDir, DefaultSourceDir))
	o.BuildDir = filepath.Clean(or(o.BuildDir, DefaultBuildDir))
	o.PackageDir = filepath.Clean(or(o.PackageDir, DefaultPackageDir))
}

// Validate checks option constraints. Recipe options are checked separately
// by Resolve.
func (o *Options) Validate() error {
	if !slices.Contains(Compilers, o.Compiler) {
		return errors.WithHintf(errors.Newf("unknown compiler %q", o.Compiler),
			"known compilers: %q", Compilers)
	}
	if o.Jobs < 0 {
		return errors.Newf("--jobs must not be negative, got %d", o.Jobs)
	}
	if o.PackFormat != "" {
		if _, err := archive.ParseFormat(o.PackFormat); err != nil {
			return err
		}
	}
	if o.Compiler != CompilerZig {
		if o.Target != "" {
			return errors.New("--target requires --compiler zig")
		}
		if o.OS != runtime.GOOS || o.Arch != runtime.GOARCH {
			return errors.WithHint(
				errors.Newf("cross-compiling to %s/%s requires --compiler zig", o.OS, o.Arch),
				"pass --compiler zig or drop --os/--arch")
		}
	}
	if o.PackageDir == "." || o.PackageDir == filepath.Dir(o.PackageDir) {
		return errors.Newf("package directory %q would be wiped on every run", o.PackageDir)
	}
	// The package directory is wiped before curation.
	for _, d := range []struct{ flag, dir string }{
		{"--build-dir", o.BuildDir},
		{"--source-dir", o.SourceDir},
	} {
		overlap, err := nested(o.PackageDir, d.dir)
		if err != nil {
			return err
		}
		if overlap {
			return errors.WithHintf(
				errors.Newf("package directory %q overlaps %s %q", o.PackageDir, d.flag, d.dir),
				"pick a --package-dir outside %s", d.dir)
		}
	}
	return nil
}

// nested reports whether a and b are the same directory or one contains the
// other.
func nested(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return within(absA, absB) || within(absB, absA), nil
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Resolve applies the recipe option model for the selected compiler.
func (o *Options) Resolve() (recipe.OptionSet, error) {
	return recipe.DefaultModel().Resolve(o.Compiler, o.Overrides)
}

// ZigTarget returns the Zig cross-compilation target string.
func (o *Options) ZigTarget() string {
	if o.Target != "" {
		return o.Target
	}
	return zig.Triple(o.OS, o.Arch)
}

// Format returns the archive format for --pack.
func (o *Options) Format() archive.Format {
	if f, err := archive.ParseFormat(o.PackFormat); err == nil {
		return f
	}
	return archive.ForOS(o.OS)
}

// CMakeSourceDir is the directory holding the top-level CMakeLists.txt.
func (o *Options) CMakeSourceDir() string {
	return filepath.Join(o.SourceDir, recipe.SourceSubdir)
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
