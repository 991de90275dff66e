package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/build"
	"github.com/qntx/vclpkg/internal/recipe"
	"github.com/qntx/vclpkg/internal/ui"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show declared options and the cmake defines they resolve to",
	Long: `Options resolves recipe options for a compiler without building and prints
the option set and the cmake -D arguments a build would pass.`,
	Args: cobra.NoArgs,
	RunE: runOptions,
}

var (
	optionsCompiler  string
	optionsOverrides map[string]string
)

func init() {
	f := optionsCmd.Flags()
	f.StringVar(&optionsCompiler, "compiler", "", "compiler to resolve for (default: host compiler)")
	f.StringToStringVarP(&optionsOverrides, "option", "o", nil, "recipe option as name=value")

	rootCmd.AddCommand(optionsCmd)
}

func runOptions(_ *cobra.Command, _ []string) error {
	opts := &build.Options{Compiler: optionsCompiler, Overrides: optionsOverrides}
	opts.Normalize()

	set, err := opts.Resolve()
	if err != nil {
		return err
	}

	ui.Header("Options for " + opts.Compiler)
	t := ui.NewTable("OPTION", "VALUE", "LEGAL VALUES")
	values := set.Values()
	for _, o := range recipe.DefaultModel().Options() {
		v, ok := values[o.Name]
		if !ok {
			v = "(removed)"
		}
		t.AddRow(o.Name, v, strings.Join(o.Values, ", "))
	}
	t.Render()

	ui.Header("Defines")
	t = ui.NewTable("NAME", "VALUE")
	defs := recipe.Defines(set)
	for _, k := range defs.Keys() {
		t.AddRow(k, defs[k])
	}
	t.Render()
	return nil
}
