// Package output renders command results for terminals, pipes and machines.
//
// A Renderer picks its format from an OutputMode. ModeAuto resolves to
// styled text on a terminal and Markdown otherwise, which reads well in CI
// logs and when the output is handed to another tool.
package output

import (
	"fmt"
	"strings"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Mode is shorthand for OutputMode, used at call sites that convert a flag.
type Mode = OutputMode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeSARIF    OutputMode = "sarif"
)

// Modes lists every accepted mode name, for flag completion.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON), string(ModeSARIF)}
}

// ParseMode converts a flag value to a mode. The empty string is ModeAuto;
// "md" is accepted for Markdown.
func ParseMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "text":
		return ModeText, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "json":
		return ModeJSON, nil
	case "sarif":
		return ModeSARIF, nil
	default:
		return ModeAuto, fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(Modes(), ", "))
	}
}
