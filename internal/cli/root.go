// Package cli provides the command-line interface for nocycle.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/nocycle/internal/cli/commands"
	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nocycle",
		Short: "nocycle - import cycle linter",
		Long: `nocycle finds import cycles in JavaScript and TypeScript projects.

It parses every module under the project root, resolves relative and aliased
imports, builds the module graph and reports each import that takes part in
a cycle, using the same rule configuration format as ESLint.`,
		Version: commands.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Info("using config file", slog.String("path", configFile))
			}
			logger.Debug("project root", slog.String("path", cfg.ProjectRoot))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .nocycle.yaml in the project root)")
	rootCmd.PersistentFlags().String("project-dir", "", "Project root (default: directory of the nearest config file)")
	rootCmd.PersistentFlags().String("state", "", "Path to the state database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|sarif)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("project-dir")
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml", "json")

	rootCmd.AddCommand(commands.NewVersionCommand(commands.Version))
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewPrintConfigCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with args. Errors other than a failed lint
// are printed to the command's error output.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrLintFailed) {
			_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit code:
// 0 on success, 1 when lint found problems, 2 for usage and runtime errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrLintFailed):
		return 1
	default:
		return 2
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nocycle.

To load completions:

Bash:
  $ source <(nocycle completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nocycle completion bash > /etc/bash_completion.d/nocycle
  # macOS:
  $ nocycle completion bash > $(brew --prefix)/etc/bash_completion.d/nocycle

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nocycle completion zsh > "${fpath[1]}/_nocycle"

Fish:
  $ nocycle completion fish | source

  # To load completions for each session, execute once:
  $ nocycle completion fish > ~/.config/fish/completions/nocycle.fish

PowerShell:
  PS> nocycle completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
