package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/internal/loader"
	"github.com/leapstack-labs/nocycle/internal/state"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext. A non-empty format overrides
// the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	modeName := cfg.OutputFormat
	if format != "" {
		modeName = format
	}
	mode, err := output.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands invoked directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{ProjectRoot: cwd, OutputFormat: config.DefaultOutput}
	}
	return cfg
}

// openStore opens the state database, creating its directory and schema.
func openStore(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(path)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	return store, nil
}

// newLoader creates a loader for the configured project. The graph always
// spans the configured include roots so imports that leave a path given on
// the command line are still followed. store may be nil.
func newLoader(cfg *config.Config, store *state.SQLiteStore, logger *slog.Logger) (*loader.Loader, error) {
	opts := loader.Options{
		Root:    cfg.ProjectRoot,
		Source:  cfg.Source,
		Resolve: cfg.Resolve,
	}
	if store != nil {
		opts.Cache = store
	}
	return loader.New(opts, logger)
}

// pathFilter selects modules under project-relative paths. An empty filter
// selects every module.
type pathFilter []string

// Match reports whether module is one of the paths or lies below one.
func (f pathFilter) Match(module string) bool {
	if len(f) == 0 {
		return true
	}
	for _, p := range f {
		if p == "." || module == p || strings.HasPrefix(module, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// Modules returns the project modules the filter selects.
func (f pathFilter) Modules(project *loader.Project) []string {
	var selected []string
	for _, m := range project.GetModules() {
		if f.Match(m) {
			selected = append(selected, m)
		}
	}
	return selected
}

// Diagnostics keeps the diagnostics reported in selected files.
func (f pathFilter) Diagnostics(diags []lint.Diagnostic) []lint.Diagnostic {
	if len(f) == 0 {
		return diags
	}
	var kept []lint.Diagnostic
	for _, d := range diags {
		if d.Pos.File == "" || f.Match(d.Pos.File) {
			kept = append(kept, d)
		}
	}
	return kept
}

// projectPaths converts command-line paths, relative to the working
// directory, into paths relative to the project root. Every path must exist.
func projectPaths(root string, args []string) (pathFilter, error) {
	paths := make(pathFilter, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", arg, err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("path %q is outside the project root %s", arg, root)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("path %q: %w", arg, err)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths, nil
}
