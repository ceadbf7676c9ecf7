package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force   bool
	Example bool
	JSON    bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file with the recommended rules",
		Long: `Create a nocycle config file holding the recommended configuration:

  plugins: [import]
  rules:
    import/no-cycle: error

Use --example to also create a small project whose modules import each
other, to see what a reported cycle looks like.`,
		Example: `  # Initialize in current directory
  nocycle init

  # Write .nocycle.json instead of .nocycle.yaml
  nocycle init --json

  # Initialize a new directory with an example project
  nocycle init my-project --example

  # Force overwrite existing config
  nocycle init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cmdCtx, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			return runInit(cmdCtx.Renderer, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&opts.Example, "example", false, "Create an example project with an import cycle")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Write .nocycle.json instead of .nocycle.yaml")

	return cmd
}

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	name := ".nocycle.yaml"
	if opts.JSON {
		name = ".nocycle.json"
	}
	configPath := filepath.Join(dir, name)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", name)
	}

	content, err := recommendedConfigFile(opts.JSON)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	if !opts.Example {
		r.StatusLine(name, "success", "")
		r.Println("")
		r.Success("nocycle initialized!")
		r.Println("")
		r.Println("Next steps:")
		r.Println("  nocycle lint     Report import cycles")
		r.Println("  nocycle rules    List available rules")
		return nil
	}

	if err := copyTemplate("example", dir, opts.Force); err != nil {
		return fmt.Errorf("failed to initialize example project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	r.StatusLine(name, "success", "")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Sources")
	for _, f := range groups["source"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("nocycle initialized with an example project!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  nocycle lint     Report the cycle between orders and customers")
	r.Println("  nocycle graph    Show the module graph")

	return nil
}

// recommendedConfigFile renders the recommended configuration object.
func recommendedConfigFile(asJSON bool) ([]byte, error) {
	obj := lint.Recommended().LintConfig()
	if asJSON {
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return append(data, '\n'), nil
	}
	data, err := yaml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
