// Package tui holds the interactive prompts of the build command.
package tui

import (
	"maps"
	"runtime"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/recipe"
)

var compilerLabels = map[string]string{
	build.CompilerGCC:          "GCC",
	build.CompilerClang:        "Clang",
	build.CompilerAppleClang:   "Apple Clang",
	build.CompilerVisualStudio: "Visual Studio (fPIC managed by the toolchain)",
	build.CompilerZig:          "Zig (cross-compiling cc/c++)",
}

// choice is what the form edits.
type choice struct {
	compiler      string
	vectorization string
	fpic          bool
}

// SelectOptions asks for the compiler and the recipe options, starting
// from the values already in opts.
func SelectOptions(opts *build.Options) error {
	c := initialChoice(opts)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Compiler").
				Description("Toolchain used to configure and build").
				Options(compilerOptions()...).
				Value(&c.compiler),

			huh.NewSelect[string]().
				Title("Vectorization").
				Description("SIMD instruction set VCL is compiled for").
				Options(vectorizationOptions()...).
				Value(&c.vectorization),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Position-independent code").
				Description("Build the static libraries with -fPIC").
				Affirmative("Yes").
				Negative("No").
				Value(&c.fpic),
		).WithHideFunc(func() bool { return c.compiler == build.CompilerVisualStudio }),
	)

	if err := form.Run(); err != nil {
		return errors.Wrap(err, "form")
	}

	c.apply(opts)
	return nil
}

func initialChoice(opts *build.Options) *choice {
	goos := opts.OS
	if goos == "" {
		goos = runtime.GOOS
	}
	c := &choice{
		compiler:      opts.Compiler,
		vectorization: string(recipe.VectorizeAVX),
	}
	if c.compiler == "" {
		c.compiler = build.DefaultCompiler(goos)
	}
	if v, ok := opts.Overrides[recipe.OptVectorization]; ok && recipe.Vectorization(v).Valid() {
		c.vectorization = v
	}
	if v, ok := opts.Overrides[recipe.OptFPIC]; ok {
		c.fpic = strings.EqualFold(v, "true")
	}
	return c
}

// apply writes the choice into opts. fPIC is left out for toolchains that
// do not have the option.
func (c *choice) apply(opts *build.Options) {
	overrides := make(map[string]string, len(opts.Overrides)+2)
	maps.Copy(overrides, opts.Overrides)
	overrides[recipe.OptVectorization] = c.vectorization
	if c.compiler == build.CompilerVisualStudio {
		delete(overrides, recipe.OptFPIC)
	} else {
		overrides[recipe.OptFPIC] = "False"
		if c.fpic {
			overrides[recipe.OptFPIC] = "True"
		}
	}

	opts.Compiler = c.compiler
	opts.Overrides = overrides
}

func compilerOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(build.Compilers))
	for i, name := range build.Compilers {
		opts[i] = huh.NewOption(compilerLabels[name], name)
	}
	return opts
}

func vectorizationOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(recipe.Vectorizations))
	for i, v := range recipe.Vectorizations {
		opts[i] = huh.NewOption(string(v), string(v))
	}
	return opts
}
