package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the tool version reported by the version command and in SARIF
// output. Set at build time.
var Version = "0.1.0"

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display nocycle version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nocycle v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Import cycle linter for JavaScript and TypeScript (%s)\n", runtime.Version())
		},
	}
}
