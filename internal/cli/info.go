package cli

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info [package-dir]",
	Short: "Show the consumer descriptor of a built package",
	Long: `Info reads the descriptor written by build and prints the include
directories, libraries and the compiler and linker flags a consumer needs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	dir, err := filepath.Abs(firstOr(args, build.DefaultPackageDir))
	if err != nil {
		return err
	}
	info, err := build.ReadDescriptor(dir)
	if err != nil {
		return err
	}

	ui.Box(describe(info)...)
	cpp := info.CppInfo
	abs := cpp.Abs(dir)
	ui.Label("include", strings.Join(abs.IncludeDirs, " "))
	ui.Label("lib dir", strings.Join(abs.LibDirs, " "))
	ui.Label("cflags", cpp.Cflags(dir))
	ui.Label("libs", cpp.Libflags(dir))
	if missing := build.MissingLibs(cpp, dir); len(missing) > 0 {
		ui.Warn("missing from %s: %s", dir, strings.Join(missing, ", "))
	}
	return nil
}

func describe(info *build.PackageInfo) []string {
	keys := slices.Sorted(maps.Keys(info.Options))
	opts := make([]string, len(keys))
	for i, k := range keys {
		opts[i] = k + "=" + info.Options[k]
	}

	return []string{
		fmt.Sprintf("%s %s (%s)", info.Name, info.Version, info.License),
		"compiler:     " + info.Compiler,
		"options:      " + strings.Join(opts, " "),
		"requires:     " + strings.Join(info.Requires, ", "),
		"include dirs: " + strings.Join(info.CppInfo.IncludeDirs, ", "),
		"libs:         " + strings.Join(info.CppInfo.Libs, ", "),
		"lib dirs:     " + strings.Join(info.CppInfo.LibDirs, ", "),
	}
}
