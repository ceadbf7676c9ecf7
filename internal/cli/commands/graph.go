package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/internal/dag"
	"github.com/leapstack-labs/nocycle/internal/loader"
	"github.com/leapstack-labs/nocycle/internal/state"
	"github.com/spf13/cobra"
)

// GraphQuerier provides read-only access to the module graph.
type GraphQuerier interface {
	NodeIDs() []string
	GetParents(string) []string
	GetChildren(string) []string
	NodeCount() int
	EdgeCount() int
	GetRoots() []string
	GetLeaves() []string
}

var _ GraphQuerier = (*dag.Graph)(nil)

// GraphOptions holds options for the graph command.
type GraphOptions struct {
	Paths   []string
	Format  string
	Modules bool // List every module with its imports
	Order   bool // Print a load order when the graph is acyclic
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}
	cmd := &cobra.Command{
		Use:   "graph [paths...]",
		Short: "Show the module graph and its cycles",
		Long: `Build the module graph and print its size and every strongly connected
component that contains a cycle, with one closed import path through it.

Unlike lint, graph ignores rule configuration: it reports the raw
structure of the project. Paths narrow the report to the modules under
them; cycles are still found across the whole project and kept when they
pass through a selected module.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show graph statistics and cycles
  nocycle graph

  # Include every module with its imports
  nocycle graph --modules

  # Only modules under src/api, in load order
  nocycle graph src/api --order

  # Output as JSON
  nocycle graph --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVarP(&opts.Modules, "modules", "m", false, "List every module with its imports")
	cmd.Flags().BoolVar(&opts.Order, "order", false, "Print modules in load order (acyclic graphs only)")
	cmd.Flags().Bool("cache", false, "Cache parsed imports in the state database")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *GraphOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	filter, err := projectPaths(cfg.ProjectRoot, opts.Paths)
	if err != nil {
		return err
	}

	var store *state.SQLiteStore
	if cfg.Cache.Enabled {
		store, err = openStore(cfg.Cache.Path, cmdCtx.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	l, err := newLoader(cfg, store, cmdCtx.Logger)
	if err != nil {
		return err
	}
	project, err := l.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build module graph: %w", err)
	}

	view := newGraphView(project, filter, opts.Order)

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeSARIF:
		return r.JSON(view.output())
	case output.ModeMarkdown:
		graphMarkdown(r, view, opts.Modules)
	default:
		graphText(r, view, opts.Modules)
	}
	return nil
}

// graphView is the part of the project graph a command reports on.
type graphView struct {
	project *loader.Project
	graph   *dag.Graph
	cycles  []dag.Cycle

	// order is the load order, when requested; orderErr explains a
	// missing one.
	order    []string
	orderErr error
}

// newGraphView narrows the project graph to the modules filter selects.
// Cycles are computed on the full graph and kept when they pass through a
// selected module.
func newGraphView(project *loader.Project, filter pathFilter, order bool) *graphView {
	v := &graphView{project: project, graph: project.Graph()}
	if len(filter) > 0 {
		v.graph = v.graph.Subgraph(filter.Modules(project))
	}
	for _, c := range project.Cycles() {
		for _, m := range c.Nodes {
			if v.graph.HasNode(m) {
				v.cycles = append(v.cycles, c)
				break
			}
		}
	}

	if order {
		nodes, err := v.graph.TopologicalSort()
		if err != nil {
			v.orderErr = err
		} else {
			v.order = make([]string, len(nodes))
			for i, n := range nodes {
				v.order[i] = n.ID
			}
		}
	}
	return v
}

func (v *graphView) output() output.GraphOutput {
	out := output.GraphOutput{
		Stats:  v.stats(),
		Cycles: make([]output.GraphCycle, 0, len(v.cycles)),
		Order:  v.order,
	}
	for _, c := range v.cycles {
		out.Cycles = append(out.Cycles, output.GraphCycle{Modules: c.Nodes, Path: c.Path})
	}
	return out
}

func (v *graphView) stats() output.GraphStats {
	var graph GraphQuerier = v.graph
	components := make(map[int]bool)
	for _, m := range graph.NodeIDs() {
		components[v.project.GetComponent(m)] = true
	}
	return output.GraphStats{
		Modules:    graph.NodeCount(),
		Edges:      graph.EdgeCount(),
		Imports:    v.project.Stats.Imports,
		External:   v.project.Stats.External,
		Unresolved: v.project.Stats.Unresolved,
		Components: len(components),
		Cycles:     len(v.cycles),
		Roots:      len(graph.GetRoots()),
		Leaves:     len(graph.GetLeaves()),
		Acyclic:    len(v.cycles) == 0,
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, v *graphView, modules bool) {
	styles := r.Styles()
	stats := v.stats()
	var graph GraphQuerier = v.graph

	r.Header(1, "Module Graph")
	r.Println("")

	if modules {
		for _, id := range graph.NodeIDs() {
			r.Printf("  %s\n", styles.FilePath.Render(id))
			if children := graph.GetChildren(id); len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("imports:"), strings.Join(children, ", "))
			}
			if parents := graph.GetParents(id); len(parents) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("imported by:"), strings.Join(parents, ", "))
			}
		}
		r.Println("")
	}

	if len(v.cycles) == 0 {
		r.Success("No cycles")
	} else {
		r.Header(2, fmt.Sprintf("Cycles (%s)", output.FormatCount(len(v.cycles))))
		for i, c := range v.cycles {
			r.Printf("  %s %s\n",
				styles.Bold.Render(fmt.Sprintf("%d.", i+1)),
				styles.Muted.Render(output.Plural(len(c.Nodes), "module", "modules")))
			r.Printf("     %s\n", strings.Join(c.Path, styles.CycleEdge.Render(" → ")))
		}
	}
	r.Println("")

	if v.order != nil {
		r.Header(2, "Load Order")
		for i, id := range v.order {
			r.Printf("  %s %s\n", styles.Muted.Render(fmt.Sprintf("%3d", i+1)), id)
		}
		r.Println("")
	} else if v.orderErr != nil {
		r.Warning("no load order: " + v.orderErr.Error())
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %s, %s (%s external, %s unresolved), %s",
		output.Plural(stats.Modules, "module", "modules"),
		output.Plural(stats.Edges, "dependency", "dependencies"),
		output.FormatCount(stats.External),
		output.FormatCount(stats.Unresolved),
		output.Plural(stats.Components, "component", "components"),
	)))
	renderParseErrors(r, v.project)
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, v *graphView, modules bool) {
	stats := v.stats()
	var graph GraphQuerier = v.graph

	r.Println(output.FormatHeader(1, "Module Graph"))
	r.Println("")

	if modules {
		r.Println(output.FormatHeader(2, "Modules"))
		for _, id := range graph.NodeIDs() {
			r.Printf("- `%s`\n", id)
			if children := graph.GetChildren(id); len(children) > 0 {
				r.Printf("  - imports: %s\n", strings.Join(children, ", "))
			}
			if parents := graph.GetParents(id); len(parents) > 0 {
				r.Printf("  - imported by: %s\n", strings.Join(parents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Cycles"))
	if len(v.cycles) == 0 {
		r.Println("None")
	}
	for i, c := range v.cycles {
		r.Printf("%d. %s\n", i+1, strings.Join(c.Path, " → "))
	}
	r.Println("")

	if v.order != nil {
		r.Println(output.FormatHeader(2, "Load Order"))
		for i, id := range v.order {
			r.Printf("%d. `%s`\n", i+1, id)
		}
		r.Println("")
	} else if v.orderErr != nil {
		r.Warning("no load order: " + v.orderErr.Error())
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Modules", stats.Modules))
	r.Println(output.FormatKeyValue("Dependencies", stats.Edges))
	r.Println(output.FormatKeyValue("External Imports", stats.External))
	r.Println(output.FormatKeyValue("Unresolved Imports", stats.Unresolved))
	r.Println(output.FormatKeyValue("Components", stats.Components))
	r.Println(output.FormatKeyValue("Cycles", stats.Cycles))
	renderParseErrors(r, v.project)
}
