package lint

import (
	"log/slog"
	"sort"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// Analyzer runs the configured rules against a project.
type Analyzer struct {
	config *Config
	logger *slog.Logger
}

// NewAnalyzer creates a new analyzer. A nil config enables nothing.
func NewAnalyzer(config *Config, logger *slog.Logger) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{config: config, logger: logger}
}

// Analyze runs every enabled rule whose plugin is listed and returns the
// diagnostics sorted by file, line, column and rule ID.
func (a *Analyzer) Analyze(ctx ProjectContext) []Diagnostic {
	if ctx == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, id := range a.config.EnabledRules() {
		rule, ok := GetRuleByID(id)
		if !ok {
			a.logger.Warn("skipping unknown rule", slog.String("rule", id))
			continue
		}
		if !a.config.HasPlugin(rule.Plugin()) {
			a.logger.Debug("skipping rule of unlisted plugin",
				slog.String("rule", id),
				slog.String("plugin", rule.Plugin()))
			continue
		}

		severity := a.config.GetSeverity(id)
		diags := rule.Check(ctx, a.config.GetRuleOptions(id))
		for i := range diags {
			diags[i].RuleID = id
			diags[i].Severity = severity
			if diags[i].DocumentationURL == "" {
				diags[i].DocumentationURL = BuildDocURL(id)
			}
		}

		a.logger.Debug("rule finished", slog.String("rule", id), slog.Int("diagnostics", len(diags)))
		diagnostics = append(diagnostics, diags...)
	}

	SortDiagnostics(diagnostics)
	return diagnostics
}

// SortDiagnostics orders diagnostics by file, line, column, then rule ID.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.RuleID < b.RuleID
	})
}

// Summary counts diagnostics by severity.
type Summary struct {
	Errors   int
	Warnings int
}

// Total returns the number of reported diagnostics.
func (s Summary) Total() int { return s.Errors + s.Warnings }

// Summarize counts errors and warnings.
func Summarize(diags []Diagnostic) Summary {
	var s Summary
	for _, d := range diags {
		switch d.Severity {
		case core.SeverityError:
			s.Errors++
		case core.SeverityWarn:
			s.Warnings++
		}
	}
	return s
}
