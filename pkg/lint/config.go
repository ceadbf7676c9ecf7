package lint

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/leapstack-labs/nocycle/pkg/core"
)

// Names used by the recommended configuration.
const (
	ImportPlugin = "import"
	NoCycleRule  = "import/no-cycle"
)

// ErrInvalidConfig is wrapped by every error returned from Validate and
// FromLintConfig.
var ErrInvalidConfig = errors.New("invalid lint configuration")

// maxSuggestionDistance bounds "did you mean" suggestions for unknown rules.
const maxSuggestionDistance = 3

// RuleSetting is the configured level and options of a single rule.
type RuleSetting struct {
	Severity core.Severity
	Options  map[string]any
}

// Config controls which plugins are enabled and how each rule reports.
type Config struct {
	// Plugins lists plugin names in declaration order.
	Plugins []string

	// Rules maps rule IDs to their settings.
	Rules map[string]RuleSetting
}

// NewConfig creates an empty configuration with no plugins and no rules.
func NewConfig() *Config {
	return &Config{
		Rules: make(map[string]RuleSetting),
	}
}

// Recommended returns the configuration that enables cyclic-import detection:
//
//	plugins: [import]
//	rules:
//	  import/no-cycle: error
//
// It is a plain value; building it has no side effects and cannot fail.
func Recommended() *Config {
	return &Config{
		Plugins: []string{ImportPlugin},
		Rules: map[string]RuleSetting{
			NoCycleRule: {Severity: core.SeverityError},
		},
	}
}

// AddPlugin appends a plugin name unless it is already listed.
func (c *Config) AddPlugin(name string) *Config {
	if !c.HasPlugin(name) {
		c.Plugins = append(c.Plugins, name)
	}
	return c
}

// HasPlugin reports whether the plugin is listed.
func (c *Config) HasPlugin(name string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Plugins {
		if p == name {
			return true
		}
	}
	return false
}

// SetRule sets the severity and options of a rule.
func (c *Config) SetRule(ruleID string, severity core.Severity, opts map[string]any) *Config {
	if c.Rules == nil {
		c.Rules = make(map[string]RuleSetting)
	}
	c.Rules[ruleID] = RuleSetting{Severity: severity, Options: opts}
	return c
}

// SetSeverity overrides the severity of a rule, keeping its options.
func (c *Config) SetSeverity(ruleID string, severity core.Severity) *Config {
	if c.Rules == nil {
		c.Rules = make(map[string]RuleSetting)
	}
	setting := c.Rules[ruleID]
	setting.Severity = severity
	c.Rules[ruleID] = setting
	return c
}

// Disable turns a rule off.
func (c *Config) Disable(ruleID string) *Config {
	return c.SetSeverity(ruleID, core.SeverityOff)
}

// IsEnabled returns true if the rule is configured above "off".
func (c *Config) IsEnabled(ruleID string) bool {
	return c.GetSeverity(ruleID) != core.SeverityOff
}

// GetSeverity returns the configured severity of a rule.
// Unconfigured rules are off.
func (c *Config) GetSeverity(ruleID string) core.Severity {
	if c == nil {
		return core.SeverityOff
	}
	return c.Rules[ruleID].Severity
}

// GetRuleOptions returns the rule-specific options, or nil.
func (c *Config) GetRuleOptions(ruleID string) map[string]any {
	if c == nil {
		return nil
	}
	return c.Rules[ruleID].Options
}

// EnabledRules returns the IDs of all rules above "off", sorted.
func (c *Config) EnabledRules() []string {
	if c == nil {
		return nil
	}
	var ids []string
	for id, setting := range c.Rules {
		if setting.Severity != core.SeverityOff {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := NewConfig()
	if c == nil {
		return clone
	}
	clone.Plugins = append([]string(nil), c.Plugins...)
	for id, setting := range c.Rules {
		var opts map[string]any
		if setting.Options != nil {
			opts = make(map[string]any, len(setting.Options))
			for k, v := range setting.Options {
				opts[k] = v
			}
		}
		clone.Rules[id] = RuleSetting{Severity: setting.Severity, Options: opts}
	}
	return clone
}

// Map returns the configuration object with exactly two keys, "plugins" and
// "rules". A rule without options maps to its severity name; a rule with
// options maps to [severity, options].
func (c *Config) Map() map[string]any {
	raw := c.LintConfig()
	return map[string]any{
		"plugins": raw.Plugins,
		"rules":   raw.Rules,
	}
}

// LintConfig converts the configuration back to its raw file form.
func (c *Config) LintConfig() core.LintConfig {
	raw := core.LintConfig{
		Plugins: []string{},
		Rules:   map[string]any{},
	}
	if c == nil {
		return raw
	}
	raw.Plugins = append(raw.Plugins, c.Plugins...)
	for id, setting := range c.Rules {
		if len(setting.Options) == 0 {
			raw.Rules[id] = setting.Severity.String()
			continue
		}
		raw.Rules[id] = []any{setting.Severity.String(), setting.Options}
	}
	return raw
}

// ParseRuleSetting parses a raw rule value: a severity ("error", 2) or a list
// of [severity] or [severity, options].
func ParseRuleSetting(v any) (RuleSetting, error) {
	var elems []any
	switch val := v.(type) {
	case []any:
		elems = val
	case []string:
		for _, s := range val {
			elems = append(elems, s)
		}
	default:
		sev, err := core.ParseSeverity(v)
		if err != nil {
			return RuleSetting{}, err
		}
		return RuleSetting{Severity: sev}, nil
	}

	if len(elems) == 0 {
		return RuleSetting{}, errors.New("empty rule setting: expected a severity")
	}
	if len(elems) > 2 {
		return RuleSetting{}, fmt.Errorf("rule setting has %d elements: expected [severity] or [severity, options]", len(elems))
	}

	sev, err := core.ParseSeverity(elems[0])
	if err != nil {
		return RuleSetting{}, err
	}
	setting := RuleSetting{Severity: sev}
	if len(elems) == 2 {
		opts, ok := toOptionMap(elems[1])
		if !ok {
			return RuleSetting{}, fmt.Errorf("rule options must be a map, got %T", elems[1])
		}
		setting.Options = opts
	}
	return setting, nil
}

// FromLintConfig builds a Config from its raw file form.
// Only the shape of each value is checked here; call Validate to check
// plugins and rule IDs against the registry.
func FromLintConfig(raw core.LintConfig) (*Config, error) {
	cfg := NewConfig()
	for _, p := range raw.Plugins {
		cfg.AddPlugin(p)
	}

	var errs []error
	for _, id := range sortedKeys(raw.Rules) {
		setting, err := ParseRuleSetting(raw.Rules[id])
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", id, err))
			continue
		}
		cfg.Rules[id] = setting
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, nil
}

// Validate checks the configuration against the plugin registry:
// every plugin must be registered, every configured rule must exist, and
// every enabled rule's plugin must be listed. Option keys must be ones the
// rule accepts.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	var errs []error
	for _, name := range c.Plugins {
		if _, ok := GetPlugin(name); !ok {
			errs = append(errs, fmt.Errorf("plugin %q is not available", name))
		}
	}

	for _, id := range sortedKeys(c.Rules) {
		setting := c.Rules[id]
		if !setting.Severity.Valid() {
			errs = append(errs, fmt.Errorf("rule %q: invalid severity %d", id, int(setting.Severity)))
			continue
		}

		rule, ok := GetRuleByID(id)
		if !ok {
			errs = append(errs, fmt.Errorf("definition for rule %q was not found%s", id, suggestRule(id)))
			continue
		}

		if setting.Severity != core.SeverityOff && !c.HasPlugin(rule.Plugin()) {
			errs = append(errs, fmt.Errorf("rule %q requires plugin %q to be listed in plugins", id, rule.Plugin()))
		}

		allowed := make(map[string]bool, len(rule.ConfigKeys()))
		for _, key := range rule.ConfigKeys() {
			allowed[key] = true
		}
		for _, key := range sortedKeys(setting.Options) {
			if !allowed[key] {
				errs = append(errs, fmt.Errorf("rule %q: unknown option %q", id, key))
			}
		}
		if v, ok := rule.(OptionsValidator); ok {
			if err := v.ValidateOptions(setting.Options); err != nil {
				errs = append(errs, fmt.Errorf("rule %q: %w", id, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// suggestRule returns a "did you mean" hint for an unknown rule ID.
func suggestRule(id string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, candidate := range RuleIDs() {
		if d := levenshtein.ComputeDistance(id, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func toOptionMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
