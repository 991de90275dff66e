// Package recipe describes how VCL is configured, built and packaged.
//
// Everything here is declarative or pure: option resolution, cmake define
// derivation, the build target list, artifact selection rules, the source
// patch and the consumer descriptor. Running the external tools is the job of
// internal/build.
package recipe

// Upstream identity of the packaged library.
const (
	Name        = "vcl"
	Version     = "2ea4dec"
	URL         = "https://github.com/bfierz/vcl.git"
	License     = "MIT"
	Description = "Visual Computing Library (VCL)"
)

// Requirement is a package the recipe depends on.
type Requirement struct {
	Name    string
	Version string
}

// Requires lists the recipe dependencies.
var Requires = []Requirement{
	{Name: "Eigen3", Version: "3.3.3"},
}

// BuildTargets are built one after another; a full build is never requested.
var BuildTargets = []string{"vcl_geometry", "vcl_math"}

// SourceSubdir is the directory of the upstream checkout holding the
// top-level CMakeLists.txt.
const SourceSubdir = "src"

// BuildDescription is the file the source patch rewrites.
const BuildDescription = "CMakeLists.txt"
