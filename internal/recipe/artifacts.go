package recipe

import "path"

// Root names the tree a rule copies from.
type Root int

const (
	// BuildRoot is the cmake binary directory.
	BuildRoot Root = iota
	// SourceRoot is the directory holding the top-level CMakeLists.txt.
	SourceRoot
)

func (r Root) String() string {
	return [...]string{"build", "source"}[r]
}

// Rule copies files whose base name matches Pattern from Root/Dir, recursively,
// into Dst inside the package directory, keeping paths relative to Dir.
type Rule struct {
	Pattern string
	Root    Root
	Dir     string
	Dst     string
}

func (r Rule) String() string {
	return r.Pattern + " " + path.Join(r.Root.String(), r.Dir) + " -> " + r.Dst
}

// ConfigHeaderDir is where cmake generates config.h, relative to the build
// root; it is packaged under the same path below include/vcl.core.
const ConfigHeaderDir = "libs/vcl.core/vcl/config"

// Artifacts is the ordered selection applied after the build.
var Artifacts = []Rule{
	{Pattern: "*.a", Root: BuildRoot, Dir: "lib", Dst: "lib"},
	{Pattern: "*.h", Root: SourceRoot, Dir: "libs", Dst: "include"},
	{Pattern: "config.h", Root: BuildRoot, Dir: ConfigHeaderDir, Dst: "include/vcl.core/vcl/config"},
}
