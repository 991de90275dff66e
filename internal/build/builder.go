package build

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/archive"
	"github.com/qntx/vclpkg/internal/cmake"
	"github.com/qntx/vclpkg/internal/logger"
	"github.com/qntx/vclpkg/internal/recipe"
	"github.com/qntx/vclpkg/internal/source"
	"github.com/qntx/vclpkg/internal/ui"
	"github.com/qntx/vclpkg/internal/zig"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Builder runs the packaging pipeline for one Options: fetch, patch,
// configure, build each target, curate and describe.
type Builder struct {
	opts   *Options
	runner cmake.Runner

	// ZigPath is the zig installation used when Options.Compiler is zig.
	ZigPath string
	// Progress reports dependency downloads; nil disables it.
	Progress Reporter
	// GitProgress receives clone progress; nil disables it.
	GitProgress io.Writer
}

// Result summarises a finished run.
type Result struct {
	Options  recipe.OptionSet
	Defines  recipe.DefineMap
	Counts   []int
	Missing  []string
	Archive  string
	Duration time.Duration
	// Commit is the checked-out source hash, empty for unversioned trees.
	Commit string
}

// New creates a Builder. opts must be normalized and validated.
func New(opts *Options, runner cmake.Runner) *Builder {
	return &Builder{opts: opts, runner: runner}
}

// Run executes the pipeline. Option resolution happens before any external
// effect, so an illegal option value never reaches the runner.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	set, err := b.opts.Resolve()
	if err != nil {
		return nil, err
	}
	defs := recipe.Defines(set)
	res := &Result{Options: set, Defines: defs}
	logger.Logger.Debugw("resolved", "compiler", b.opts.Compiler, "options", set.String(), "defines", defs.Args())

	if err := b.prepare(ctx, res); err != nil {
		return nil, err
	}
	if err := b.compile(ctx, defs); err != nil {
		ui.BuildFailed()
		return nil, err
	}
	if err := b.collect(set, res); err != nil {
		return nil, err
	}

	if b.opts.Pack {
		path, err := b.pack()
		if err != nil {
			return nil, err
		}
		res.Archive = path
	}

	res.Duration = time.Since(start)
	ui.Built(b.opts.PackageDir, res.Duration)
	return res, nil
}

// prepare fetches the source and dependencies, writes the build-info
// script and patches CMakeLists.txt.
func (b *Builder) prepare(ctx context.Context, res *Result) error {
	ui.Phase("Fetching", b.opts.Source+"@"+b.opts.Revision)
	if err := source.Fetch(ctx, b.opts.Source, b.opts.Revision, b.opts.SourceDir, b.GitProgress); err != nil {
		return err
	}
	if hash, err := source.Head(b.opts.SourceDir); err == nil {
		res.Commit = hash
		logger.Logger.Debugw("source", "dir", b.opts.SourceDir, "commit", hash)
	}

	ui.Phase("Resolving", recipe.Requires[0].Name+" "+recipe.Requires[0].Version)
	pkgs, err := EnsureAll(ctx, []string{b.opts.Eigen}, b.Progress)
	if err != nil {
		return errors.Wrap(err, "resolve dependencies")
	}

	info := NewBuildInfo(pkgs[0], pkgs)
	path, err := info.Write(b.opts.BuildDir)
	if err != nil {
		return err
	}
	logger.Logger.Debugw("build info", "path", path, "eigen", info.EigenRoot)

	file := filepath.Join(b.opts.CMakeSourceDir(), recipe.BuildDescription)
	changed, err := recipe.Patch(file)
	if err != nil {
		return err
	}
	logger.Logger.Debugw("patch", "file", file, "changed", changed)
	return nil
}

// compile configures once and builds each target in order, stopping at the
// first failure.
func (b *Builder) compile(ctx context.Context, defs recipe.DefineMap) error {
	src, err := filepath.Abs(b.opts.CMakeSourceDir())
	if err != nil {
		return err
	}
	bld, err := filepath.Abs(b.opts.BuildDir)
	if err != nil {
		return err
	}

	cm := cmake.New(b.runner, src, bld).
		Generator(b.opts.Generator).
		BuildType(b.opts.BuildType).
		Jobs(b.opts.Jobs)
	if b.opts.Compiler == CompilerZig {
		cm.Env(zig.Env(b.ZigPath, b.opts.ZigTarget())...)
	}

	ui.Phase("Configuring", b.opts.BuildDir)
	if out, err := cm.Configure(ctx, defs.Args()); err != nil {
		return errors.WithDetail(
			errors.Mark(errors.Wrap(err, "cmake configure"), recipe.ErrConfigureFailed),
			string(out))
	}

	for _, target := range recipe.BuildTargets {
		ui.Building(target)
		if out, err := cm.Build(ctx, target); err != nil {
			return errors.WithDetail(
				errors.Mark(errors.Wrapf(err, "cmake build %s", target), recipe.ErrBuildFailed),
				string(out))
		}
	}
	return nil
}

// collect rebuilds the package directory from the artifact rules and writes
// the consumer descriptor.
func (b *Builder) collect(set recipe.OptionSet, res *Result) error {
	pkgDir := b.opts.PackageDir
	if err := os.RemoveAll(pkgDir); err != nil {
		return err
	}
	if err := os.MkdirAll(pkgDir, dirPerm); err != nil {
		return err
	}

	roots := Roots{Build: b.opts.BuildDir, Source: b.opts.CMakeSourceDir()}
	counts, err := Curate(recipe.Artifacts, roots, pkgDir)
	if err != nil {
		return err
	}
	res.Counts = counts

	var total int
	for i, n := range counts {
		if n == 0 {
			ui.Warn("%s copied nothing", recipe.Artifacts[i])
		}
		total += n
	}

	desc := recipe.ConsumerDescriptor()
	if err := WriteDescriptor(pkgDir, NewPackageInfo(b.opts.Compiler, set)); err != nil {
		return err
	}
	res.Missing = MissingLibs(desc, pkgDir)
	for _, lib := range res.Missing {
		ui.Warn("%s is advertised but missing from %s", lib, pkgDir)
	}

	ui.Packaged(pkgDir, total)
	return nil
}

func (b *Builder) pack() (string, error) {
	stem := recipe.Name + "-" + recipe.Version
	dest := archive.Name(b.opts.PackageDir, stem, b.opts.OS, b.opts.Arch, b.opts.Format())
	if err := archive.Create(b.opts.PackageDir, dest); err != nil {
		return "", err
	}
	logger.Logger.Debugw("archive", "path", dest)
	return dest, nil
}
