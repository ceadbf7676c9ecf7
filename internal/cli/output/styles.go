package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1   lipgloss.Style
	Header2   lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	FilePath  lipgloss.Style
	RuleID    lipgloss.Style
	CycleEdge lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusPending lipgloss.Style
}

// NewStyles builds styles for the given color profile. termenv.Ascii
// produces plain text.
func NewStyles(profile termenv.Profile) *Styles {
	renderer := lipgloss.NewRenderer(io.Discard)
	renderer.SetColorProfile(profile)

	s := renderer.NewStyle
	return &Styles{
		Header1:   s().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:   s().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:      s().Bold(true),
		Muted:     s().Foreground(lipgloss.Color("8")),
		Success:   s().Foreground(lipgloss.Color("10")),
		Warning:   s().Foreground(lipgloss.Color("11")),
		Error:     s().Foreground(lipgloss.Color("9")),
		Info:      s().Foreground(lipgloss.Color("12")),
		FilePath:  s().Underline(true),
		RuleID:    s().Foreground(lipgloss.Color("13")),
		CycleEdge: s().Foreground(lipgloss.Color("11")),

		StatusSuccess: s().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  s().Foreground(lipgloss.Color("9")).SetString("✗"),
		StatusPending: s().Foreground(lipgloss.Color("8")).SetString("•"),
	}
}
