package cli

import (
	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/recipe"
	"github.com/qntx/vclpkg/internal/ui"
)

var patchCmd = &cobra.Command{
	Use:   "patch <CMakeLists.txt>",
	Short: "Inject the dependency setup into a VCL CMakeLists.txt",
	Long: `Patch inserts the include of ` + recipe.BuildInfoFile + ` and the setup
call directly after the project declaration. Running it again leaves the
file unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runPatch,
}

func init() {
	rootCmd.AddCommand(patchCmd)
}

func runPatch(_ *cobra.Command, args []string) error {
	changed, err := recipe.Patch(args[0])
	if err != nil {
		return err
	}
	if changed {
		ui.Success("patched %s", args[0])
	} else {
		ui.Info("%s already patched", args[0])
	}
	return nil
}
