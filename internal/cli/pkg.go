package cli

import (
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/ui"
)

var (
	pkgCmd = &cobra.Command{
		Use:   "pkg",
		Short: "Manage cached dependency packages such as Eigen",
	}

	pkgListCmd = &cobra.Command{
		Use:   "list",
		Short: "List cached packages with their size",
		Args:  cobra.NoArgs,
		RunE:  runPkgList,
	}

	pkgCleanCmd = &cobra.Command{
		Use:   "clean [name]",
		Short: "Remove cached packages",
		Long: `Clean removes the cached package with the given name, every package
matching a glob such as url-*-eigen-*, or the whole cache when no name is
given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPkgClean,
	}

	pkgInfoCmd = &cobra.Command{
		Use:   "info <name>",
		Short: "Show where a cached package lives and what it holds",
		Args:  cobra.ExactArgs(1),
		RunE:  runPkgInfo,
	}

	pkgInstallCmd = &cobra.Command{
		Use:   "install <source>...",
		Short: "Download packages into the cache without building",
		Long: `Install fetches dependency archives ahead of a build, for example to
warm a CI cache. Sources are archive URLs such as
` + build.DefaultEigen + `
or GitHub release assets written as owner/repo@version/asset.tar.gz.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPkgInstall,
	}
)

func init() {
	pkgCmd.AddCommand(pkgListCmd, pkgCleanCmd, pkgInfoCmd, pkgInstallCmd)
	rootCmd.AddCommand(pkgCmd)
}

func runPkgList(_ *cobra.Command, _ []string) error {
	pkgs, err := build.ListCached()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		ui.Info("no cached packages")
		return nil
	}
	slices.SortFunc(pkgs, func(a, b build.CachedPkg) int { return strings.Compare(a.Name, b.Name) })

	var total int64
	t := ui.NewTable("NAME", "SIZE", "INCLUDE", "LIB")
	for _, p := range pkgs {
		t.AddRow(p.Name, ui.FormatSize(p.Size), strconv.Itoa(p.Include), strconv.Itoa(p.Lib))
		total += p.Size
	}
	t.Render()
	ui.Dim("%d packages, %s in %s", len(pkgs), ui.FormatSize(total), build.CacheDir())
	return nil
}

func runPkgClean(_ *cobra.Command, args []string) error {
	pkgs, err := build.ListCached()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if len(pkgs) == 0 {
			ui.Info("nothing to clean")
			return nil
		}
		if err := build.RemoveAllCached(); err != nil {
			return err
		}
		ui.Success("removed %d package(s)", len(pkgs))
		return nil
	}

	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name
	}
	n, err := removeMatching(names, args[0], build.RemoveCached, "")
	if err == nil && n == 0 {
		ui.Info("no packages matching %q", args[0])
	}
	return err
}

func runPkgInfo(_ *cobra.Command, args []string) error {
	pkgs, err := build.ListCached()
	if err != nil {
		return err
	}

	i := slices.IndexFunc(pkgs, func(p build.CachedPkg) bool { return matchGlob(p.Name, args[0]) })
	if i < 0 {
		return errors.WithHint(errors.Newf("package %q not found", args[0]), "see 'vclpkg pkg list'")
	}
	p := pkgs[i]
	ui.Label("name", p.Name)
	ui.Label("path", p.Path)
	ui.Label("size", ui.FormatSize(p.Size))
	ui.Label("include", strconv.Itoa(p.Include)+" files")
	ui.Label("lib", strconv.Itoa(p.Lib)+" files")
	return nil
}

func runPkgInstall(cmd *cobra.Command, args []string) error {
	progress := ui.NewProgress()
	pkgs, err := build.EnsureAll(cmd.Context(), args, func(name string) archive.ReaderFunc {
		return progress.Proxy(name)
	})
	progress.Finish(err)
	if err != nil {
		return err
	}

	for _, p := range pkgs {
		ui.Success("installed %s", p.Dir)
	}
	return nil
}

// removeMatching calls remove for every name matching pattern and returns
// how many were removed.
func removeMatching(names []string, pattern string, remove func(string) error, label string) (int, error) {
	var n int
	for _, name := range names {
		if !matchGlob(name, pattern) {
			continue
		}
		if err := remove(name); err != nil {
			return n, err
		}
		ui.Cleaned(label + name)
		n++
	}
	return n, nil
}

// matchGlob reports whether name matches pattern; a pattern without
// wildcards must match exactly.
func matchGlob(name, pattern string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
