package output

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer    = message.NewPrinter(language.English)
	titleCaser = cases.Title(language.English)
)

// FormatCount formats n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Plural formats a count with its noun, e.g. "1 error" or "1,024 errors".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return FormatCount(n) + " " + plural
}

// Title converts s to title case.
func Title(s string) string {
	return titleCaser.String(s)
}
