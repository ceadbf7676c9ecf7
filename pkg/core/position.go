package core

import "fmt"

// Position is a location in a source file. Line and Column are 1-based;
// a zero Line means the position is unknown.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

// IsValid reports whether the position points at a concrete line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as file:line:column, dropping unknown parts.
func (p Position) String() string {
	switch {
	case p.File == "" && !p.IsValid():
		return "-"
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	case !p.IsValid():
		return p.File
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}
