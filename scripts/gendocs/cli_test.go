package main

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nocycle/internal/cli"
)

func TestDedent(t *testing.T) {
	in := "\n  # Lint everything\n  nocycle lint\n\n    nocycle lint src\n"
	assert.Equal(t, "# Lint everything\nnocycle lint\n\n  nocycle lint src", dedent(in))
}

func TestFlagDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("watch", false, "")
	fs.Int("max-warnings", -1, "")
	fs.Int("limit", 0, "")
	fs.String("format", "", "")
	fs.StringSlice("rule", nil, "")

	tests := map[string]string{
		"watch":        "",
		"max-warnings": "`-1`",
		"limit":        "`0`",
		"format":       "",
		"rule":         "",
	}
	for name, want := range tests {
		assert.Equal(t, want, flagDefault(fs.Lookup(name)), name)
	}
}

func TestCommandPages(t *testing.T) {
	commands := visibleCommands(cli.NewRootCmd())
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "lint")
	assert.Contains(t, names, "graph")
	assert.NotContains(t, names, "help")

	var lintCmd = commands[0]
	for _, cmd := range commands {
		if cmd.Name() == "lint" {
			lintCmd = cmd
		}
	}
	page := string(commandPage(lintCmd, commands).Bytes())
	require.Contains(t, page, "# nocycle lint")
	assert.Contains(t, page, "## Examples")
	assert.Contains(t, page, "[`graph`](/cli/graph)")
	assert.False(t, strings.Contains(page, "[`lint`](/cli/lint)"), "a page does not link to itself")

	index := string(cliIndex(cli.NewRootCmd(), commands).Bytes())
	assert.Contains(t, index, "`.nocycle.yaml`")
	assert.Contains(t, index, "| `sarif` |")
}
