package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/internal/loader"
	"github.com/leapstack-labs/nocycle/internal/state"
	"github.com/leapstack-labs/nocycle/internal/watch"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	_ "github.com/leapstack-labs/nocycle/pkg/lint/rules" // register built-in plugins
	"github.com/spf13/cobra"
)

// ErrLintFailed is returned when a run reports errors or more warnings than
// allowed. The process exits with status 1 for it.
var ErrLintFailed = errors.New("lint failed")

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths       []string // Files or directories to lint
	Format      string   // Output format override
	Rules       []string // id=severity overrides
	Disable     []string // Rule IDs to turn off
	MaxWarnings int      // -1 allows any number of warnings
	Watch       bool     // Re-lint on change
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report import cycles",
		Long: `Build the module graph of the project and run the enabled rules.

The rules come from the plugins and rules of the config file. Without one,
the recommended configuration applies: the import plugin with
import/no-cycle at error.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON and SARIF: Machine-readable formats`,
		Example: `  # Lint the project
  nocycle lint

  # Lint one directory
  nocycle lint ./src/features

  # Report cycles as warnings and fail on more than 10
  nocycle lint --rule import/no-cycle=warn --max-warnings 10

  # Upload results to code scanning
  nocycle lint --format sarif > nocycle.sarif

  # Keep linting as files change
  nocycle lint --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, sarif")
	cmd.Flags().StringArrayVar(&opts.Rules, "rule", nil, "Override a rule severity (id=severity, repeatable)")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().IntVar(&opts.MaxWarnings, "max-warnings", -1, "Fail when there are more warnings than this (-1 for no limit)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint when source files change")
	cmd.Flags().Bool("cache", false, "Cache parsed imports in the state database")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("disable", completeRuleIDs)

	return cmd
}

func completeRuleIDs(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lint.RuleIDs(), cobra.ShellCompDirectiveNoFileComp
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	lintCfg, err := buildLintConfig(cfg, opts)
	if err != nil {
		return err
	}

	filter, err := projectPaths(cfg.ProjectRoot, opts.Paths)
	if err != nil {
		return err
	}

	var store *state.SQLiteStore
	if cfg.Cache.Enabled {
		store, err = openStore(cfg.Cache.Path, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	l, err := newLoader(cfg, store, logger)
	if err != nil {
		return err
	}

	run := &lintRun{cmdCtx: cmdCtx, loader: l, config: lintCfg, store: store, filter: filter}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	project, summary, err := run.once(ctx)
	if err != nil {
		return err
	}
	if !opts.Watch {
		return checkLintResult(summary, opts.MaxWarnings)
	}

	w := watch.New(watch.Options{Root: l.Root(), Extensions: cfg.Source.Extensions}, logger)
	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		affected := project.Graph().GetAffectedNodes(changed)
		logger.Info("sources changed",
			slog.Int("changed", len(changed)),
			slog.Int("affected", len(affected)))
		cmdCtx.Renderer.Muted(fmt.Sprintf("%s changed (%s affected), linting again",
			output.Plural(len(changed), "file", "files"),
			output.Plural(len(affected), "module", "modules")))

		next, summary, err := run.once(ctx)
		if err != nil {
			return err
		}
		project = next
		if err := checkLintResult(summary, opts.MaxWarnings); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
		return nil
	})
}

// buildLintConfig applies --rule and --disable on top of the configured
// lint object and validates the result.
func buildLintConfig(cfg *config.Config, opts *LintOptions) (*lint.Config, error) {
	lintCfg, err := lint.FromLintConfig(cfg.LintConfig())
	if err != nil {
		return nil, err
	}

	for _, override := range opts.Rules {
		id, value, ok := strings.Cut(override, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid --rule %q: expected id=severity", override)
		}
		sev, err := core.ParseSeverity(value)
		if err != nil {
			return nil, fmt.Errorf("invalid --rule %q: %w", override, err)
		}
		id = strings.TrimSpace(id)
		lintCfg.SetSeverity(id, sev)
		if sev != core.SeverityOff {
			if rule, ok := lint.GetRuleByID(id); ok {
				lintCfg.AddPlugin(rule.Plugin())
			}
		}
	}
	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	if err := lintCfg.Validate(); err != nil {
		return nil, err
	}
	return lintCfg, nil
}

// checkLintResult turns a summary into the command's exit error.
func checkLintResult(summary lint.Summary, maxWarnings int) error {
	if summary.Errors > 0 {
		return fmt.Errorf("%w: %s", ErrLintFailed, output.Plural(summary.Errors, "error", "errors"))
	}
	if maxWarnings >= 0 && summary.Warnings > maxWarnings {
		return fmt.Errorf("%w: %s exceed the limit of %d", ErrLintFailed,
			output.Plural(summary.Warnings, "warning", "warnings"), maxWarnings)
	}
	return nil
}

// lintRun builds, analyzes, renders and records one pass.
type lintRun struct {
	cmdCtx *CommandContext
	loader *loader.Loader
	config *lint.Config
	store  *state.SQLiteStore
	filter pathFilter
}

func (lr *lintRun) once(ctx context.Context) (*loader.Project, lint.Summary, error) {
	logger := lr.cmdCtx.Logger

	var runID string
	if lr.store != nil {
		run, err := lr.store.CreateRun(lr.loader.Root())
		if err != nil {
			logger.Warn("failed to record run", slog.String("error", err.Error()))
		} else {
			runID = run.ID
		}
	}

	project, err := lr.loader.Build(ctx)
	if err != nil {
		lr.complete(runID, core.RunStatusFailed, core.RunStats{}, err.Error())
		return nil, lint.Summary{}, err
	}
	logger.Debug("project loaded", slog.String("stats", project.Stats.Summary()))

	diags := lr.filter.Diagnostics(lint.NewAnalyzer(lr.config, logger).Analyze(project))
	summary := lint.Summarize(diags)
	files := len(lr.filter.Modules(project))

	if err := renderLintResults(lr.cmdCtx.Renderer, project, files, diags); err != nil {
		return nil, lint.Summary{}, err
	}

	lr.complete(runID, core.RunStatusCompleted, core.RunStats{
		Files:    files,
		Cycles:   len(project.Cycles()),
		Errors:   summary.Errors,
		Warnings: summary.Warnings,
	}, "")
	return project, summary, nil
}

func (lr *lintRun) complete(runID string, status core.RunStatus, stats core.RunStats, errMsg string) {
	if lr.store == nil || runID == "" {
		return
	}
	if err := lr.store.CompleteRun(runID, status, stats, errMsg); err != nil {
		lr.cmdCtx.Logger.Warn("failed to complete run",
			slog.String("run", runID),
			slog.String("error", err.Error()))
	}
}
