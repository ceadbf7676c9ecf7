package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	_ "github.com/leapstack-labs/nocycle/pkg/lint/rules"
)

// generateLintDocs writes an index page and one page per plugin.
func generateLintDocs(outDir string) error {
	log.Printf("Generating lint docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	plugins := lint.AllPlugins()

	if err := generateLintIndex(outDir, plugins); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, p := range plugins {
		if err := generatePluginPage(outDir, p); err != nil {
			return err
		}
		log.Printf("  Generated %s.md", p.Name)
	}

	return nil
}

// generateLintIndex generates the rules overview page.
func generateLintIndex(outDir string, plugins []lint.Plugin) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Lint rules available in nocycle")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("nocycle ships **%d rules** in **%d plugins**.", lint.Count(), len(plugins)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Number", "Effect"},
		[][]string{
			{InlineCode("off"), "0", "The rule does not run"},
			{InlineCode("warn"), "1", "Reported; fails only past --max-warnings"},
			{InlineCode("error"), "2", "Reported; the lint command exits with code 1"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("A rule runs when its plugin is listed under `plugins` and its severity is above `off`. Options follow the severity:")
	w.CodeBlock("yaml", `plugins:
  - import
rules:
  import/no-cycle: [error, { maxDepth: 10, ignoreExternal: true }]
  import/no-self-import: warn`)

	w.Header(2, "Plugins")
	var rows [][]string
	for _, p := range plugins {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/rules/%s)", InlineCode(p.Name), p.Name),
			fmt.Sprintf("%d", len(p.Rules)),
			cleanDescription(p.Description),
		})
	}
	w.Table([]string{"Plugin", "Rules", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generatePluginPage documents every rule of one plugin.
func generatePluginPage(outDir string, p lint.Plugin) error {
	w := NewMarkdownWriter()

	w.Frontmatter(capitalizeFirst(p.Name)+" Rules", p.Description)
	w.GeneratedMarker()

	w.Header(1, capitalizeFirst(p.Name)+" Rules")
	w.Paragraph(p.Description)

	infos := make([]core.RuleInfo, 0, len(p.Rules))
	for _, r := range p.Rules {
		infos = append(infos, lint.GetRuleInfo(r))
	}
	for _, info := range sortRuleInfos(infos) {
		writeRuleDoc(w, info)
	}

	return os.WriteFile(filepath.Join(outDir, p.Name+".md"), w.Bytes(), 0600)
}

func sortRuleInfos(infos []core.RuleInfo) []core.RuleInfo {
	out := append([]core.RuleInfo(nil), infos...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule core.RuleInfo) {
	// Rule header with anchor: ## import/no-cycle {#no-cycle}
	w.Line(fmt.Sprintf("## %s {#%s}", rule.ID, rule.Name))
	w.Newline()

	badge := fmt.Sprintf("**Default:** %s", InlineCode(rule.DefaultSeverity.String()))
	if rule.Recommended {
		badge += " | **Recommended**"
	}
	w.Line(badge)
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	if rationale := rule.Rationale; rationale != "" {
		w.Header(3, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rationale))
	}

	if bad := rule.BadExample; bad != "" {
		w.Header(3, "Bad")
		w.CodeBlock("js", bad)
	}

	if good := rule.GoodExample; good != "" {
		w.Header(3, "Good")
		w.CodeBlock("js", good)
	}

	if fix := rule.Fix; fix != "" {
		w.Header(3, "How to Fix")
		w.Paragraph(strings.TrimSpace(fix))
	}

	if len(rule.ConfigKeys) > 0 {
		w.Header(3, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following options: %s",
			InlineCode(strings.Join(rule.ConfigKeys, ", "))))
	}

	w.Paragraph(fmt.Sprintf("[Upstream documentation](%s)", lint.BuildDocURL(rule.ID)))

	// Horizontal rule between rules for readability
	w.Line("---")
	w.Newline()
}
