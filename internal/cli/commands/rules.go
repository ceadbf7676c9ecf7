package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Plugin  string // Filter by plugin
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all available lint rules with their documentation.

Rules are organized by plugin. A rule only runs when its plugin is listed
under plugins and the rule is configured above "off".
Use --full to include rationale and options, or pass a rule ID for its full
documentation.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  nocycle rules

  # Show details for a specific rule
  nocycle rules import/no-cycle

  # List rules of the import plugin
  nocycle rules --plugin import

  # Show full documentation
  nocycle rules -V

  # Output as JSON
  nocycle rules --format json`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return lint.RuleIDs(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Plugin, "plugin", "p", "", "Filter by plugin")
	cmd.Flags().BoolVar(&opts.Verbose, "full", false, "Show rationale and options for each rule")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// ruleEntry is a rule with the severity it has in the loaded configuration.
type ruleEntry struct {
	core.RuleInfo
	Configured core.Severity `json:"configured"`
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	rules := filterRulesByOptions(configuredRules(cmdCtx), opts)

	// Sort by plugin, then ID
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Plugin != rules[j].Plugin {
			return rules[i].Plugin < rules[j].Plugin
		}
		return rules[i].ID < rules[j].ID
	})

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeSARIF:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, opts.Verbose)
	default:
		return listRulesText(r, rules, opts.Verbose)
	}
}

// configuredRules pairs every registered rule with its configured severity.
// An invalid configuration reports every rule as off.
func configuredRules(cmdCtx *CommandContext) []ruleEntry {
	lintCfg, err := lint.FromLintConfig(cmdCtx.Cfg.LintConfig())
	if err != nil {
		cmdCtx.Logger.Debug("ignoring invalid lint configuration", slog.String("error", err.Error()))
		lintCfg = lint.NewConfig()
	}

	infos := lint.AllRules()
	rules := make([]ruleEntry, 0, len(infos))
	for _, info := range infos {
		configured := core.SeverityOff
		if lintCfg.HasPlugin(info.Plugin) {
			configured = lintCfg.GetSeverity(info.ID)
		}
		rules = append(rules, ruleEntry{RuleInfo: info, Configured: configured})
	}
	return rules
}

func filterRulesByOptions(rules []ruleEntry, opts *RulesOptions) []ruleEntry {
	if opts.Plugin == "" {
		return rules
	}

	var filtered []ruleEntry
	for _, r := range rules {
		if r.Plugin == opts.Plugin {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	var rule *ruleEntry
	for _, entry := range configuredRules(cmdCtx) {
		if entry.ID == ruleID {
			rule = &entry
			break
		}
	}

	if rule == nil {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeSARIF:
		return r.JSON(rule)
	case output.ModeMarkdown:
		return showRuleMarkdown(r, rule)
	default:
		return showRuleText(r, rule)
	}
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []ruleEntry, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Lint Rules (%s)", output.FormatCount(len(rules)))))
	r.Println("")

	currentPlugin := ""
	for _, rule := range rules {
		if rule.Plugin != currentPlugin {
			currentPlugin = rule.Plugin
			r.Println(styles.Header2.Render(capitalizeFirst(currentPlugin) + " Plugin"))
			r.Println("")
		}

		recommended := ""
		if rule.Recommended {
			recommended = styles.Success.Render(" ✓ recommended")
		}
		r.Printf("    %s  %s - %s%s\n",
			styles.RuleID.Render(rule.ID),
			rule.Description,
			getSeverityStyle(styles, rule.Configured).Render(rule.Configured.String()),
			recommended,
		)

		if verbose {
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("        Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			if len(rule.ConfigKeys) > 0 {
				r.Println(styles.Muted.Render("        Options: " + strings.Join(rule.ConfigKeys, ", ")))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'nocycle rules <rule-id>' for detailed documentation"))
	r.Println("")

	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []ruleEntry, verbose bool) error {
	r.Println("# Lint Rules")
	r.Println("")

	currentPlugin := ""
	var rows [][]string
	flush := func() {
		if len(rows) > 0 {
			r.Table([]string{"Rule", "Configured", "Default", "Recommended"}, rows)
			r.Println("")
			rows = nil
		}
	}

	for _, rule := range rules {
		if rule.Plugin != currentPlugin {
			flush()
			currentPlugin = rule.Plugin
			r.Println("## " + capitalizeFirst(currentPlugin) + " Plugin")
			r.Println("")
		}

		recommended := ""
		if rule.Recommended {
			recommended = "yes"
		}
		rows = append(rows, []string{
			"`" + rule.ID + "`",
			rule.Configured.String(),
			rule.DefaultSeverity.String(),
			recommended,
		})
	}
	flush()

	if verbose {
		for _, rule := range rules {
			r.Printf("- **%s** - %s\n", rule.ID, rule.Description)
			if rule.Rationale != "" {
				r.Println("  > " + truncateOneLine(rule.Rationale, 200))
			}
		}
		r.Println("")
	}

	return nil
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []ruleEntry    `json:"rules"`
	Count map[string]int `json:"count"`
	Total int            `json:"total"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []ruleEntry) error {
	jsonOutput := RulesJSONOutput{
		Rules: rules,
		Count: make(map[string]int),
		Total: len(rules),
	}
	for _, rule := range rules {
		jsonOutput.Count[rule.Plugin]++
	}
	return r.JSON(jsonOutput)
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *ruleEntry) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(rule.ID))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Plugin"), rule.Plugin)
	r.Printf("  %s: %s\n", styles.Bold.Render("Default"), rule.DefaultSeverity.String())
	r.Printf("  %s: %s\n", styles.Bold.Render("Configured"),
		getSeverityStyle(styles, rule.Configured).Render(rule.Configured.String()))
	r.Printf("  %s: %s\n", styles.Bold.Render("Docs"), lint.BuildDocURL(rule.ID))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		for _, line := range strings.Split(rule.Rationale, "\n") {
			r.Println("  " + line)
		}
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(styles.Bold.Render("How to Fix"))
		for _, line := range strings.Split(rule.Fix, "\n") {
			r.Println("  " + line)
		}
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
		r.Println("")
	}

	return nil
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *ruleEntry) error {
	r.Printf("# %s\n\n", rule.ID)
	r.Printf("**Plugin:** %s | **Default:** `%s` | **Configured:** `%s`\n\n",
		rule.Plugin, rule.DefaultSeverity.String(), rule.Configured.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println(output.FormatCodeBlock("js", rule.BadExample))
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println(output.FormatCodeBlock("js", rule.GoodExample))
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println("## How to Fix")
		r.Println("")
		r.Println(rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println("## Configuration")
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		r.Println("")
	}

	r.Printf("[Documentation](%s)\n", lint.BuildDocURL(rule.ID))
	return nil
}

// Helper functions

func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarn:
		return styles.Warning
	default:
		return styles.Muted
	}
}

// severityLabel renders a severity padded to a fixed width.
func severityLabel(styles *output.Styles, sev core.Severity) string {
	return getSeverityStyle(styles, sev).Render(fmt.Sprintf("%-5s", sev.String()))
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func capitalizeFirst(s string) string {
	return output.Title(s)
}
