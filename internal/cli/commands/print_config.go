package commands

import (
	"fmt"

	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// PrintConfigOptions holds options for the print-config command.
type PrintConfigOptions struct {
	Format string
	All    bool // Include source, resolve and cache sections
}

// fullConfig is the --all view of the effective configuration.
type fullConfig struct {
	Plugins []string             `json:"plugins" yaml:"plugins"`
	Rules   map[string]any       `json:"rules" yaml:"rules"`
	Source  config.SourceConfig  `json:"source" yaml:"source"`
	Resolve config.ResolveConfig `json:"resolve" yaml:"resolve"`
	Cache   config.CacheConfig   `json:"cache" yaml:"cache"`
}

// NewPrintConfigCommand creates the print-config command.
func NewPrintConfigCommand() *cobra.Command {
	opts := &PrintConfigOptions{}
	cmd := &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective lint configuration",
		Long: `Print the configuration object lint runs with after merging defaults,
the config file, environment variables and flags.

The object has exactly two keys, plugins and rules. Use --all to include
the source, resolve and cache sections.`,
		Example: `  # Print as YAML
  nocycle print-config

  # Print as JSON, including every section
  nocycle print-config --format json --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrintConfig(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: yaml, json")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include source, resolve and cache settings")

	return cmd
}

func runPrintConfig(cmd *cobra.Command, opts *PrintConfigOptions) error {
	format := opts.Format
	if format == "yaml" {
		format = ""
	}
	cmdCtx, err := NewCommandContext(cmd, format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	lintCfg, err := cfg.BuildLintConfig()
	if err != nil {
		return err
	}
	obj := lintCfg.Map()

	var v any = obj
	if opts.All {
		raw := lintCfg.LintConfig()
		v = fullConfig{
			Plugins: raw.Plugins,
			Rules:   raw.Rules,
			Source:  cfg.Source,
			Resolve: cfg.Resolve,
			Cache:   cfg.Cache,
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(v)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if r.EffectiveMode() == output.ModeMarkdown && opts.Format == "" {
		r.Println(output.FormatCodeBlock("yaml", string(data)))
		return nil
	}
	_, err = r.Writer().Write(data)
	return err
}
