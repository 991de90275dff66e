package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/ui"
	"github.com/qntx/vclpkg/internal/zig"
)

var (
	zigCmd = &cobra.Command{
		Use:   "zig",
		Short: "Manage the Zig toolchains used by --compiler zig",
	}

	zigUpdateCmd = &cobra.Command{
		Use:   "update [version]",
		Short: "Install a Zig version, or refresh master",
		Long: `Update downloads a Zig release into the user cache so that
'vclpkg build --compiler zig' can route cmake's C and C++ compilers through
'zig cc' and 'zig c++'. Without a version it refreshes master.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runZigUpdate,
	}

	zigListCmd = &cobra.Command{
		Use:   "list",
		Short: "List cached Zig versions",
		Args:  cobra.NoArgs,
		RunE:  runZigList,
	}

	zigCleanCmd = &cobra.Command{
		Use:   "clean [version]",
		Short: "Remove cached Zig versions",
		Long: `Clean removes one cached Zig version, every version matching a glob
such as 0.14.*, or the whole Zig cache when no version is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runZigClean,
	}
)

func init() {
	zigUpdateCmd.Flags().BoolP("force", "f", false, "remove the cached copy before downloading")

	zigCmd.AddCommand(zigUpdateCmd, zigListCmd, zigCleanCmd)
	rootCmd.AddCommand(zigCmd)
}

func runZigUpdate(cmd *cobra.Command, args []string) error {
	version := firstOr(args, "master")
	if force, _ := cmd.Flags().GetBool("force"); force || version == "master" {
		if err := zig.Remove(version); err != nil {
			return err
		}
	}

	dir, err := ensureZig(cmd.Context(), version)
	if err != nil {
		return err
	}
	ui.Success("zig %s ready", version)
	ui.Label("bin", zig.Bin(dir))
	return nil
}

func runZigList(_ *cobra.Command, _ []string) error {
	versions, err := zig.Installed()
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		ui.Info("no zig versions installed")
		return nil
	}

	slices.Sort(versions)
	t := ui.NewTable("VERSION", "PATH")
	for _, v := range versions {
		t.AddRow(v, zig.Path(v))
	}
	t.Render()
	return nil
}

func runZigClean(_ *cobra.Command, args []string) error {
	versions, err := zig.Installed()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if len(versions) == 0 {
			ui.Info("nothing to clean")
			return nil
		}
		if err := zig.RemoveAll(); err != nil {
			return err
		}
		ui.Success("removed %d version(s)", len(versions))
		return nil
	}

	n, err := removeMatching(versions, args[0], zig.Remove, "zig ")
	if err == nil && n == 0 {
		ui.Info("zig %s: not installed", args[0])
	}
	return err
}

func firstOr(s []string, def string) string {
	if len(s) > 0 {
		return s[0]
	}
	return def
}
