package lint

import (
	"github.com/leapstack-labs/nocycle/pkg/core"
)

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	Plugin      string        // Owning plugin, e.g. "import"
	Name        string        // Rule name within the plugin, e.g. "no-cycle"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity when enabled without an explicit level
	Recommended bool          // Part of the recommended configuration
	Check       CheckFunc     // The check function
	ConfigKeys  []string      // Option keys this rule accepts

	// ValidateOptions rejects option values the rule cannot use.
	// Optional; nil accepts everything.
	ValidateOptions func(opts map[string]any) error

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// CheckFunc analyzes the project and returns diagnostics.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(ctx ProjectContext, opts map[string]any) []Diagnostic

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string
	Severity core.Severity
	Message  string
	Pos      core.Position // Pos.File holds the project-relative module path
	EndPos   core.Position // Optional: end of the problematic range

	DocumentationURL string        // URL to rule documentation
	RelatedInfo      []RelatedInfo // Additional locations, e.g. each hop of a cycle
}

// RelatedInfo provides additional context for a diagnostic.
type RelatedInfo struct {
	Pos     core.Position
	Message string
}

// =============================================================================
// Rule Interface
// =============================================================================

// Rule is the interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "import/no-cycle"
	ID() string

	// Plugin returns the owning plugin name, e.g., "import"
	Plugin() string

	// Name returns the rule name within its plugin, e.g., "no-cycle"
	Name() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the severity used when enabled without an explicit level
	DefaultSeverity() core.Severity

	// Recommended reports whether the rule is part of the recommended config
	Recommended() bool

	// ConfigKeys returns option keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string   // Why this rule exists, what problems it prevents
	BadExample() string  // Code showing the anti-pattern
	GoodExample() string // Code showing the correct pattern
	Fix() string         // How to fix violations (when not obvious)

	// Check analyzes the project and returns diagnostics.
	Check(ctx ProjectContext, opts map[string]any) []Diagnostic
}

// OptionsValidator is implemented by rules that check their option values.
// Config.Validate calls it for every configured rule that implements it.
type OptionsValidator interface {
	ValidateOptions(opts map[string]any) error
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID(),
		Plugin:          r.Plugin(),
		Name:            r.Name(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		Recommended:     r.Recommended(),
		ConfigKeys:      r.ConfigKeys(),
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}
}

// =============================================================================
// Wrapped RuleDef
// =============================================================================

// wrappedRuleDef wraps a RuleDef to implement Rule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the Rule interface.
func WrapRuleDef(def RuleDef) Rule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                     { return RuleID(w.def.Plugin, w.def.Name) }
func (w *wrappedRuleDef) Plugin() string                 { return w.def.Plugin }
func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Description() string            { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) Recommended() bool              { return w.def.Recommended }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }

// Documentation methods
func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

func (w *wrappedRuleDef) Check(ctx ProjectContext, opts map[string]any) []Diagnostic {
	if w.def.Check == nil {
		return nil
	}
	return w.def.Check(ctx, opts)
}

func (w *wrappedRuleDef) ValidateOptions(opts map[string]any) error {
	if w.def.ValidateOptions == nil {
		return nil
	}
	return w.def.ValidateOptions(opts)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}

// RuleID joins a plugin name and rule name into a rule ID.
func RuleID(plugin, name string) string {
	if plugin == "" {
		return name
	}
	return plugin + "/" + name
}

// =============================================================================
// Project Context
// =============================================================================

// ProjectContext provides access to the module graph for rules.
// This is an interface to avoid import cycles between lint and the loader.
type ProjectContext interface {
	// GetModules returns every project module path in sorted order.
	GetModules() []string

	// GetImports returns the import records of a module in source order.
	GetImports(module string) []core.Import

	// GetComponent returns the strongly connected component ID of a module.
	// Two modules can only be on a common cycle when their IDs are equal.
	// Returns -1 for unknown modules.
	GetComponent(module string) int
}
