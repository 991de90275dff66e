package cli

import (
	"context"
	"maps"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/cmake"
	"github.com/qntx/vclpkg/internal/logger"
	"github.com/qntx/vclpkg/internal/tui"
	"github.com/qntx/vclpkg/internal/ui"
	"github.com/qntx/vclpkg/internal/zig"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch, configure, build and package VCL",
	Long: `Build fetches the VCL sources, patches CMakeLists.txt, configures with
cmake, builds vcl_geometry and vcl_math and curates the result into the
package directory.

Configuration can be loaded from vclpkg.toml in the current or parent
directories. CLI flags override config file values; -o options are merged
over the profile's options.

When --profile is not specified and vclpkg.toml has profiles, all of them
are built in order.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

type buildFlags struct {
	config   string
	profiles []string
	opts     build.Options
}

var flags buildFlags

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "config file path (default: vclpkg.toml)")
	f.StringSliceVarP(&flags.profiles, "profile", "p", nil, "config profiles to build (comma-separated or repeated)")

	f.StringToStringVarP(&flags.opts.Overrides, "option", "o", nil, "recipe option as name=value (vectorization, fPIC)")
	f.StringVar(&flags.opts.Compiler, "compiler", "", "compiler: gcc, clang, apple-clang, \"Visual Studio\" or zig")
	f.StringVar(&flags.opts.ZigVersion, "zig-version", "", "zig version used with --compiler zig")
	f.StringVar(&flags.opts.OS, "os", "", "target operating system")
	f.StringVar(&flags.opts.Arch, "arch", "", "target architecture")
	f.StringVarP(&flags.opts.Target, "target", "t", "", "explicit zig target triple")

	f.StringVar(&flags.opts.Source, "source", "", "VCL git repository")
	f.StringVar(&flags.opts.Revision, "revision", "", "VCL revision to check out")
	f.StringVar(&flags.opts.SourceDir, "source-dir", "", "checkout directory")
	f.StringVar(&flags.opts.Eigen, "eigen", "", "Eigen3 archive URL, owner/repo@version/asset or directory")

	f.StringVar(&flags.opts.BuildDir, "build-dir", "", "cmake binary directory")
	f.StringVar(&flags.opts.PackageDir, "package-dir", "", "package output directory")
	f.StringVarP(&flags.opts.Generator, "generator", "G", "", "cmake generator")
	f.StringVar(&flags.opts.BuildType, "build-type", "", "cmake build type")
	f.IntVarP(&flags.opts.Jobs, "jobs", "j", 0, "parallel build jobs (0: cmake default)")

	f.BoolVar(&flags.opts.Pack, "pack", false, "create an archive of the package")
	f.StringVar(&flags.opts.PackFormat, "pack-format", "", "archive format: tar.gz, tar.xz or zip")
	f.BoolVarP(&flags.opts.Interactive, "interactive", "i", false, "choose compiler and options interactively")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	optsList, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	for i, opts := range optsList {
		if err := runSingleBuild(cmd.Context(), opts, i, len(optsList)); err != nil {
			return err
		}
	}
	return nil
}

func runSingleBuild(ctx context.Context, opts *build.Options, idx, total int) error {
	if opts.Interactive {
		if err := tui.SelectOptions(opts); err != nil {
			return errors.Wrap(err, "prompt")
		}
	}

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return err
	}
	set, err := opts.Resolve()
	if err != nil {
		return err
	}

	if opts.Verbose && !verbose {
		if err := logger.Initialize(true, logJSON); err != nil {
			return err
		}
	}
	ui.Profile(idx, total, opts.Compiler+" "+opts.OS+"/"+opts.Arch, set.String())

	runner := &cmake.ExecRunner{}
	if opts.Verbose {
		runner.Stream = ui.Output
	}
	b := build.New(opts, runner)
	if opts.Verbose {
		b.GitProgress = ui.Output
	}

	if opts.Compiler == build.CompilerZig {
		if b.ZigPath, err = ensureZig(ctx, opts.ZigVersion); err != nil {
			return err
		}
		logger.Logger.Debugw("zig", "path", b.ZigPath, "target", opts.ZigTarget())
	}

	progress := ui.NewProgress()
	b.Progress = func(name string) archive.ReaderFunc { return progress.Proxy(name) }
	res, err := b.Run(ctx)
	progress.Finish(err)
	if err != nil {
		return err
	}

	if res.Archive != "" {
		ui.Label("archive", res.Archive)
	}
	return nil
}

// ensureZig installs a zig toolchain with a download bar.
func ensureZig(ctx context.Context, version string) (string, error) {
	progress := ui.NewProgress()
	path, err := zig.Ensure(ctx, version, progress.Proxy("zig "+version))
	progress.Finish(err)
	if err != nil {
		return "", errors.Wrap(err, "zig")
	}
	return path, nil
}

func loadOptions(cmd *cobra.Command) ([]*build.Options, error) {
	cfg, err := build.LoadConfig(flags.config)
	if err != nil && !errors.Is(err, build.ErrConfigNotFound) {
		return nil, errors.Wrap(err, "config")
	}

	var optsList []*build.Options
	if cfg != nil {
		optsList, err = cfg.ToOptions(flags.profiles)
		if err != nil {
			return nil, errors.Wrap(err, "config")
		}
	} else {
		if len(flags.profiles) > 0 {
			return nil, errors.WithHintf(errors.New("--profile given but no config file found"),
				"create %s or pass --config", build.ConfigFile)
		}
		optsList = []*build.Options{{}}
	}

	for _, opts := range optsList {
		applyFlagOverrides(cmd, opts)
	}
	return optsList, nil
}

func applyFlagOverrides(cmd *cobra.Command, opts *build.Options) {
	f := cmd.Flags()
	src := &flags.opts

	strs := []struct {
		name string
		dst  *string
		val  string
	}{
		{"compiler", &opts.Compiler, src.Compiler},
		{"zig-version", &opts.ZigVersion, src.ZigVersion},
		{"os", &opts.OS, src.OS},
		{"arch", &opts.Arch, src.Arch},
		{"target", &opts.Target, src.Target},
		{"source", &opts.Source, src.Source},
		{"revision", &opts.Revision, src.Revision},
		{"source-dir", &opts.SourceDir, src.SourceDir},
		{"eigen", &opts.Eigen, src.Eigen},
		{"build-dir", &opts.BuildDir, src.BuildDir},
		{"package-dir", &opts.PackageDir, src.PackageDir},
		{"generator", &opts.Generator, src.Generator},
		{"build-type", &opts.BuildType, src.BuildType},
		{"pack-format", &opts.PackFormat, src.PackFormat},
	}
	for _, s := range strs {
		if f.Changed(s.name) {
			*s.dst = s.val
		}
	}

	if f.Changed("option") {
		merged := make(map[string]string, len(opts.Overrides)+len(src.Overrides))
		maps.Copy(merged, opts.Overrides)
		maps.Copy(merged, src.Overrides)
		opts.Overrides = merged
	}
	if f.Changed("jobs") {
		opts.Jobs = src.Jobs
	}
	if f.Changed("pack") {
		opts.Pack = src.Pack
	}
	if f.Changed("interactive") {
		opts.Interactive = src.Interactive
	}
	opts.Verbose = opts.Verbose || verbose
}
