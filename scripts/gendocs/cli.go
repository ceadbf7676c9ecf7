package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/nocycle/internal/cli"
	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// modeDescriptions explains each --output value on the index page.
var modeDescriptions = map[string]string{
	"auto":     "Text on a terminal, Markdown when piped",
	"text":     "Styled text grouped by file",
	"markdown": "Markdown for agents and CI summaries",
	"json":     "Machine-readable results",
	"sarif":    "SARIF 2.1.0 for code scanning uploads (lint only)",
}

// generateCLIDocs writes an overview page and one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	commands := visibleCommands(root)

	if err := writePage(outDir, "index.md", cliIndex(root, commands)); err != nil {
		return err
	}
	for _, cmd := range commands {
		if err := writePage(outDir, cmd.Name()+".md", commandPage(cmd, commands)); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
	}
	return nil
}

func writePage(outDir, name string, w *MarkdownWriter) error {
	if err := os.WriteFile(filepath.Join(outDir, name), w.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Printf("  Generated %s", name)
	return nil
}

// visibleCommands returns the user-facing subcommands of root.
func visibleCommands(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func cliIndex(root *cobra.Command, commands []*cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line reference for the nocycle import cycle linter")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("nocycle builds the import graph of a JavaScript or TypeScript project " +
		"and reports every import that closes a dependency cycle. " +
		"It follows the semantics of eslint-plugin-import's " + InlineCode("import/no-cycle") + " rule.")

	w.Header(2, "Quick Start")
	w.CodeBlock("bash", `go install github.com/leapstack-labs/nocycle/cmd/nocycle@latest

cd my-app
nocycle init        # write .nocycle.yaml
nocycle lint        # report cycles, exit 1 on errors
nocycle graph -m    # inspect the module graph`)

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(commands))
	for _, cmd := range commands {
		rows = append(rows, []string{commandLink(cmd), cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("Every command accepts:")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Output Formats")
	modeRows := make([][]string, 0, len(output.Modes()))
	for _, mode := range output.Modes() {
		modeRows = append(modeRows, []string{InlineCode(mode), modeDescriptions[mode]})
	}
	w.Table([]string{"Format", "Description"}, modeRows)
	w.Paragraph("Diagnostics go to stdout. Logs and skipped files go to stderr, so " +
		InlineCode("nocycle lint -o json > report.json") + " stays parseable.")

	w.Header(2, "Configuration")
	names := make([]string, len(config.ConfigFileNames))
	for i, name := range config.ConfigFileNames {
		names[i] = InlineCode(name)
	}
	w.Paragraph("The first of " + strings.Join(names, ", ") +
		" found in the project root is loaded, or the file given with " + InlineCode("--config") + ". " +
		"Settings are layered, later sources winning:")
	w.BulletList([]string{
		"built-in defaults (the recommended rule set)",
		"the config file",
		InlineCode("NOCYCLE_") + " environment variables, with " + InlineCode("__") + " separating nested keys",
		"command-line flags",
	})
	w.Table([]string{"Variable", "Description"}, [][]string{
		{InlineCode("NOCYCLE_OUTPUT"), "Default output format"},
		{InlineCode("NOCYCLE_VERBOSE"), "Enable debug logging"},
		{InlineCode("NOCYCLE_CACHE__ENABLED"), "Cache parsed imports and record runs"},
		{InlineCode("NOCYCLE_CACHE__PATH"), "State database path, relative to the project root"},
		{InlineCode("NOCYCLE_RESOLVE__BASE_DIR"), "Directory for non-relative imports"},
	})

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "No errors, and warnings within " + InlineCode("--max-warnings")},
		{InlineCode("1"), "Lint reported errors or too many warnings"},
		{InlineCode("2"), "Invalid configuration, bad arguments or a runtime failure; the reason is printed to stderr"},
	})
	return w
}

func commandLink(cmd *cobra.Command) string {
	return fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
}

func commandPage(cmd *cobra.Command, all []*cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, "nocycle "+cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	use := cmd.UseLine()
	if !strings.HasPrefix(use, "nocycle") {
		use = "nocycle " + use
	}
	if cmd.HasAvailableSubCommands() {
		use = "nocycle " + cmd.Name() + " <subcommand>"
	}
	w.CodeBlock("bash", use)

	if cmd.HasAvailableSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	var related []string
	for _, other := range all {
		if other != cmd {
			related = append(related, commandLink(other)+" "+cleanDescription(other.Short))
		}
	}
	if len(related) > 0 {
		w.Header(2, "See Also")
		w.BulletList(related)
	}
	return w
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		rows = append(rows, []string{name, flagDefault(f), cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Default", "Description"}, rows)
}

// flagDefault formats a default value; zero values are left blank.
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "false", "[]", "0":
		if f.Value.Type() != "int" {
			return ""
		}
	}
	return InlineCode(f.DefValue)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first || !strings.HasPrefix(indent, prefix) {
			prefix = commonPrefix(prefix, indent, first)
		}
		first = false
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func commonPrefix(a, b string, first bool) string {
	if first {
		return b
	}
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}
