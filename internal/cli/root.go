package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/qntx/vclpkg/internal/logger"
	"github.com/qntx/vclpkg/internal/ui"
)

var (
	brandPrimary = lipgloss.Color("#7C3AED")
	brandMuted   = lipgloss.Color("#6B7280")
)

var rootCmd = &cobra.Command{
	Use:   "vclpkg",
	Short: "Build and package the Visual Computing Library",
	Long: lipgloss.NewStyle().Foreground(brandPrimary).Bold(true).Render("vclpkg") +
		` fetches VCL, configures it with cmake and curates the
static libraries and headers into a self-describing package.

` + lipgloss.NewStyle().Foreground(brandMuted).Render(`Build:   vclpkg build -o vectorization=AVX2 -o fPIC=True
Inspect: vclpkg info package
Zig:     vclpkg zig update`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logger.Initialize(verbose, logJSON)
	},
}

var (
	verbose bool
	logJSON bool
)

// Execute runs the command line and reports a failure with its hints and
// captured tool output.
func Execute() error {
	defer logger.Sync()

	err := rootCmd.Execute()
	if err != nil {
		report(err)
	}
	return err
}

func report(err error) {
	ui.Error("%v", err)
	for _, hint := range errors.FlattenHints(err) {
		ui.Dim("hint: %s", hint)
	}
	// Verbose runs already streamed the tool output.
	if !verbose {
		for _, detail := range errors.FlattenDetails(err) {
			ui.Dim("%s", detail)
		}
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&verbose, "verbose", "v", false, "verbose output and debug logging")
	f.BoolVar(&logJSON, "log-json", false, "emit debug logs as JSON")

	rootCmd.AddCommand(buildCmd)
}
