package commands

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/internal/loader"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// fileDiagnostics groups the diagnostics reported in one file.
type fileDiagnostics struct {
	Path        string
	Diagnostics []lint.Diagnostic
}

// groupByFile groups diagnostics by file, keeping their order.
func groupByFile(diags []lint.Diagnostic) []fileDiagnostics {
	var groups []fileDiagnostics
	index := make(map[string]int)
	for _, d := range diags {
		i, ok := index[d.Pos.File]
		if !ok {
			i = len(groups)
			index[d.Pos.File] = i
			groups = append(groups, fileDiagnostics{Path: d.Pos.File})
		}
		groups[i].Diagnostics = append(groups[i].Diagnostics, d)
	}
	return groups
}

// renderLintResults writes diags in the renderer's mode. files is the
// number of modules the run covered.
func renderLintResults(r *output.Renderer, project *loader.Project, files int, diags []lint.Diagnostic) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(buildLintOutput(project, files, diags))
	case output.ModeSARIF:
		renderParseErrors(r, project)
		return r.JSON(buildSARIF(diags))
	case output.ModeMarkdown:
		renderLintMarkdown(r, project, files, diags)
	default:
		renderLintText(r, project, files, diags)
	}
	return nil
}

func renderParseErrors(r *output.Renderer, project *loader.Project) {
	for _, perr := range project.Errors {
		r.Warning("skipped " + perr.Error())
	}
}

func renderLintText(r *output.Renderer, project *loader.Project, files int, diags []lint.Diagnostic) {
	styles := r.Styles()
	renderParseErrors(r, project)

	for _, group := range groupByFile(diags) {
		r.Println(styles.FilePath.Render(group.Path))
		for _, d := range group.Diagnostics {
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", location(d.Pos))),
				severityLabel(styles, d.Severity),
				d.Message,
				styles.RuleID.Render(d.RuleID),
			)
			for _, rel := range d.RelatedInfo {
				r.Printf("           %s %s  %s\n",
					styles.CycleEdge.Render("↳"),
					styles.Muted.Render(rel.Pos.String()),
					styles.Muted.Render(rel.Message),
				)
			}
		}
		r.Println("")
	}

	summary := lint.Summarize(diags)
	if summary.Total() == 0 {
		r.Success(fmt.Sprintf("No problems found in %s", output.Plural(files, "file", "files")))
		return
	}

	line := fmt.Sprintf("%s %s (%s, %s)",
		styles.StatusFailed.String(),
		output.Plural(summary.Total(), "problem", "problems"),
		output.Plural(summary.Errors, "error", "errors"),
		output.Plural(summary.Warnings, "warning", "warnings"),
	)
	if summary.Errors > 0 {
		r.Println(styles.Error.Render(line))
	} else {
		r.Println(styles.Warning.Render(line))
	}
}

func renderLintMarkdown(r *output.Renderer, project *loader.Project, files int, diags []lint.Diagnostic) {
	summary := lint.Summarize(diags)

	r.Println(output.FormatHeader(1, "Lint Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Files", output.FormatCount(files)))
	r.Println(output.FormatKeyValue("Errors", summary.Errors))
	r.Println(output.FormatKeyValue("Warnings", summary.Warnings))
	r.Println("")

	for _, group := range groupByFile(diags) {
		r.Println(output.FormatHeader(2, "`"+group.Path+"`"))
		r.Println("")
		for _, d := range group.Diagnostics {
			r.Printf("- **%s** `%s` %s: %s\n", d.Severity, d.RuleID, location(d.Pos), d.Message)
			for _, rel := range d.RelatedInfo {
				r.Printf("  - `%s` %s\n", rel.Pos.String(), rel.Message)
			}
		}
		r.Println("")
	}

	if len(project.Errors) > 0 {
		r.Println(output.FormatHeader(2, "Parse Errors"))
		r.Println("")
		for _, perr := range project.Errors {
			r.Printf("- `%s`\n", perr.Error())
		}
		r.Println("")
	}

	if summary.Total() == 0 {
		r.Success("No problems found")
	}
}

func buildLintOutput(project *loader.Project, files int, diags []lint.Diagnostic) output.LintOutput {
	summary := lint.Summarize(diags)
	out := output.LintOutput{
		Summary: output.LintSummary{
			FilesAnalyzed: files,
			TotalIssues:   summary.Total(),
			Errors:        summary.Errors,
			Warnings:      summary.Warnings,
		},
		Files: []output.LintFileResult{},
	}

	for _, group := range groupByFile(diags) {
		result := output.LintFileResult{Path: group.Path}
		for _, d := range group.Diagnostics {
			diag := output.LintDiagnostic{
				RuleID:   d.RuleID,
				Severity: d.Severity.String(),
				Message:  d.Message,
				Line:     d.Pos.Line,
				Column:   d.Pos.Column,
				DocURL:   d.DocumentationURL,
			}
			for _, rel := range d.RelatedInfo {
				diag.Related = append(diag.Related, output.RelatedEntry{
					Path:    rel.Pos.File,
					Line:    rel.Pos.Line,
					Column:  rel.Pos.Column,
					Message: rel.Message,
				})
			}
			result.Diagnostics = append(result.Diagnostics, diag)
		}
		out.Files = append(out.Files, result)
	}
	out.Summary.FilesWithIssues = len(out.Files)

	for _, perr := range project.Errors {
		out.Errors = append(out.Errors, output.ParseFailure{
			Path:    perr.File,
			Line:    perr.Line,
			Column:  perr.Column,
			Message: perr.Message,
		})
	}
	return out
}

// buildSARIF converts diagnostics into a SARIF log with one run.
func buildSARIF(diags []lint.Diagnostic) output.SARIFLog {
	ruleIDs := make(map[string]bool)
	for _, d := range diags {
		ruleIDs[d.RuleID] = true
	}
	ids := make([]string, 0, len(ruleIDs))
	for id := range ruleIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ruleIndex := make(map[string]int, len(ids))
	rules := make([]output.SARIFRule, 0, len(ids))
	for i, id := range ids {
		ruleIndex[id] = i
		rule := output.SARIFRule{ID: id, HelpURI: lint.BuildDocURL(id)}
		if r, ok := lint.GetRuleByID(id); ok {
			info := lint.GetRuleInfo(r)
			rule.ShortDescription = output.SARIFMessage{Text: info.Description}
			rule.DefaultConfig = &output.SARIFDefaultConfig{Level: output.SARIFLevel(info.DefaultSeverity.String())}
		}
		rules = append(rules, rule)
	}

	results := make([]output.SARIFResult, 0, len(diags))
	for _, d := range diags {
		result := output.SARIFResult{
			RuleID:    d.RuleID,
			RuleIndex: ruleIndex[d.RuleID],
			Level:     output.SARIFLevel(d.Severity.String()),
			Message:   output.SARIFMessage{Text: d.Message},
			Locations: []output.SARIFLocation{output.NewSARIFLocation(d.Pos.File, d.Pos.Line, d.Pos.Column)},
		}
		for i, rel := range d.RelatedInfo {
			loc := output.NewSARIFLocation(rel.Pos.File, rel.Pos.Line, rel.Pos.Column)
			id := i
			loc.ID = &id
			loc.Message = &output.SARIFMessage{Text: rel.Message}
			result.RelatedLocations = append(result.RelatedLocations, loc)
		}
		results = append(results, result)
	}

	return output.SARIFLog{
		Version: output.SARIFVersion,
		Schema:  output.SARIFSchema,
		Runs: []output.SARIFRun{{
			Tool: output.SARIFTool{Driver: output.SARIFDriver{
				Name:           "nocycle",
				Version:        Version,
				InformationURI: "https://github.com/leapstack-labs/nocycle",
				Rules:          rules,
			}},
			Results: results,
		}},
	}
}

func location(pos core.Position) string {
	if pos.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}
