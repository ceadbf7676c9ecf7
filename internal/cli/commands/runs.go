package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/spf13/cobra"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit  int
	Format string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent lint runs",
		Long: `List lint runs recorded in the state database, newest first.

Runs are recorded when the import cache is enabled (cache.enabled in the
config file, NOCYCLE_CACHE__ENABLED=true or lint --cache).`,
		Example: `  # Show the last 10 runs
  nocycle runs

  # Show the last 50 runs as JSON
  nocycle runs --limit 50 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if _, err := os.Stat(cfg.Cache.Path); os.IsNotExist(err) {
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON([]output.RunInfo{})
		}
		r.Muted("No runs recorded. Enable the cache to record lint runs.")
		return nil
	}

	store, err := openStore(cfg.Cache.Path, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}

	infos := make([]output.RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, toRunInfo(run))
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	if len(infos) == 0 {
		r.Muted("No runs recorded.")
		return nil
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Lint Runs"))
		r.Println("")
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			shortID(info.ID),
			info.StartedAt,
			info.Status,
			fmt.Sprintf("%dms", info.DurationMS),
			output.FormatCount(info.Files),
			output.FormatCount(info.Cycles),
			output.FormatCount(info.Errors),
			output.FormatCount(info.Warnings),
		})
	}
	r.Table([]string{"Run", "Started", "Status", "Duration", "Files", "Cycles", "Errors", "Warnings"}, rows)
	return nil
}

func toRunInfo(run *core.Run) output.RunInfo {
	return output.RunInfo{
		ID:         run.ID,
		Root:       run.Root,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt.Local().Format(time.DateTime),
		DurationMS: run.Duration().Milliseconds(),
		Files:      run.Stats.Files,
		Cycles:     run.Stats.Cycles,
		Errors:     run.Stats.Errors,
		Warnings:   run.Stats.Warnings,
		Error:      run.Error,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
