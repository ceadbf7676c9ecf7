package core

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the reporting level of a lint rule.
// The numeric values match the 0/1/2 shorthand accepted in config files.
type Severity int

// Severity levels for rules and diagnostics.
const (
	// SeverityOff disables the rule.
	SeverityOff Severity = iota
	// SeverityWarn reports violations without failing the run.
	SeverityWarn
	// SeverityError reports violations and fails the run.
	SeverityError
)

// String returns the canonical config spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined levels.
func (s Severity) Valid() bool {
	return s >= SeverityOff && s <= SeverityError
}

// MarshalText implements encoding.TextMarshaler so severities render as
// "off", "warn" or "error" in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity converts a config value to a Severity.
// Accepted: "off", "warn", "warning", "error" (any case), the integers
// 0, 1, 2 (including float64 from JSON) and their digit strings.
func ParseSeverity(v any) (Severity, error) {
	switch val := v.(type) {
	case Severity:
		if val.Valid() {
			return val, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "off":
			return SeverityOff, nil
		case "warn", "warning":
			return SeverityWarn, nil
		case "error":
			return SeverityError, nil
		}
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return severityFromInt(n)
		}
	case int:
		return severityFromInt(val)
	case int64:
		return severityFromInt(int(val))
	case float64:
		if val == float64(int(val)) {
			return severityFromInt(int(val))
		}
	}
	return SeverityOff, fmt.Errorf("invalid severity %v: expected one of off, warn, error (or 0, 1, 2)", v)
}

func severityFromInt(n int) (Severity, error) {
	sev := Severity(n)
	if !sev.Valid() {
		return SeverityOff, fmt.Errorf("invalid severity %d: expected 0, 1 or 2", n)
	}
	return sev, nil
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a lint rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID              string   `json:"id"`
	Plugin          string   `json:"plugin"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	Recommended     bool     `json:"recommended"`
	ConfigKeys      []string `json:"config_keys,omitempty"`

	// Documentation fields
	Rationale   string `json:"rationale,omitempty"`
	BadExample  string `json:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty"`
	Fix         string `json:"fix,omitempty"`
}
