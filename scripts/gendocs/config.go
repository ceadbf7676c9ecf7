package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/nocycle/internal/cli/config"
	_ "github.com/leapstack-labs/nocycle/pkg/lint/rules"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Key         string
	Type        string
	Description string
	Category    string // "lint", "source", "resolve", "cache", "cli"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Key: "plugins", Type: "[]string", Description: "Plugins whose rules may run", Category: "lint"},
		{Key: "rules", Type: "map[string]any", Description: "Rule severities, optionally with options: `[severity, {options}]`", Category: "lint"},

		{Key: "source.include", Type: "[]string", Description: "Directories or files to lint, relative to the project root", Category: "source"},
		{Key: "source.extensions", Type: "[]string", Description: "File extensions treated as modules", Category: "source"},
		{Key: "source.ignore", Type: "[]string", Description: "Doublestar globs of paths to skip", Category: "source"},

		{Key: "resolve.base_dir", Type: "string", Description: "Directory that non-relative, non-package imports resolve against", Category: "resolve"},
		{Key: "resolve.alias", Type: "map[string]string", Description: "Import prefix aliases, e.g. `@/` to `src/`", Category: "resolve"},

		{Key: "cache.enabled", Type: "bool", Description: "Cache parsed imports and record lint runs", Category: "cache"},
		{Key: "cache.path", Type: "string", Description: "State database path, relative to the project root", Category: "cache"},

		{Key: "output", Type: "string", Description: "Output format: auto, text, markdown, json, sarif", Category: "cli"},
		{Key: "verbose", Type: "bool", Description: "Enable debug logging", Category: "cli"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "nocycle configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("nocycle reads the first of %s found in the project root or one of its parents. "+
		"JSON files use the same keys.", quoteAll(config.ConfigFileNames)))

	defaults := flatten("", config.Defaults())

	sections := []struct{ category, title string }{
		{"lint", "Lint"},
		{"source", "Source"},
		{"resolve", "Resolve"},
		{"cache", "Cache"},
		{"cli", "Command Line"},
	}
	for _, sec := range sections {
		w.Header(2, sec.title)
		var rows [][]string
		for _, f := range getConfigSchema() {
			if f.Category != sec.category {
				continue
			}
			rows = append(rows, []string{InlineCode(f.Key), f.Type, formatDefault(defaults[f.Key]), f.Description})
		}
		w.Table([]string{"Key", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Defaults")
	data, err := yaml.Marshal(config.Defaults())
	if err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}
	w.CodeBlock("yaml", string(data))

	log.Printf("  Generated configuration.md")
	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}

// flatten turns nested maps into dotted keys.
func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && key != "rules" && key != "resolve.alias" {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

func formatDefault(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return InlineCode(val)
	case []string:
		return InlineCode("[" + strings.Join(val, ", ") + "]")
	case map[string]any:
		if len(val) == 0 {
			return InlineCode("{}")
		}
		return "see below"
	default:
		return InlineCode(fmt.Sprint(val))
	}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = InlineCode(n)
	}
	return strings.Join(quoted, ", ")
}
