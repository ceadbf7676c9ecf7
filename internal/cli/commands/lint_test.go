package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/nocycle/internal/cli/config"
	"github.com/leapstack-labs/nocycle/internal/cli/output"
	clitestutil "github.com/leapstack-labs/nocycle/internal/cli/testutil"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_JSON(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json")
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, err.Error(), "2 errors")

	var got output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Summary.FilesAnalyzed)
	assert.Equal(t, 2, got.Summary.Errors)
	assert.Equal(t, 2, got.Summary.FilesWithIssues)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "src/a.js", got.Files[0].Path)
	assert.Equal(t, "src/b.js", got.Files[1].Path)

	d := got.Files[0].Diagnostics[0]
	assert.Equal(t, "import/no-cycle", d.RuleID)
	assert.Equal(t, "error", d.Severity)
	assert.Equal(t, "Dependency cycle detected.", d.Message)
	assert.Equal(t, 1, d.Line)
	assert.NotEmpty(t, d.DocURL)
	require.Len(t, d.Related, 1)
	assert.Equal(t, "src/b.js", d.Related[0].Path)
}

func TestLint_Overrides(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  error
		errors   int
		warnings int
	}{
		{name: "recommended", args: nil, wantErr: ErrLintFailed, errors: 2},
		{name: "downgraded to warn", args: []string{"--rule", "import/no-cycle=warn"}, warnings: 2},
		{name: "numeric severity", args: []string{"--rule", "import/no-cycle=1"}, warnings: 2},
		{name: "too many warnings", args: []string{"--rule", "import/no-cycle=warn", "--max-warnings", "1"}, wantErr: ErrLintFailed, warnings: 2},
		{name: "warnings within limit", args: []string{"--rule", "import/no-cycle=warn", "--max-warnings", "2"}, warnings: 2},
		{name: "disabled", args: []string{"--disable", "import/no-cycle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

			args := append([]string{"--format", "json"}, tt.args...)
			stdout, _, err := executeInProject(t, root, NewLintCommand(), args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			var got output.LintOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.errors, got.Summary.Errors)
			assert.Equal(t, tt.warnings, got.Summary.Warnings)
		})
	}
}

func TestLint_ConfigFile(t *testing.T) {
	files := map[string]string{
		"src/a.js": "import './b'\n",
		"src/b.js": "import './c'\n",
		"src/c.js": "import './a'\n",
	}

	t.Run("maxDepth hides long cycles", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, files, "rules:\n  import/no-cycle: [error, {maxDepth: 1}]\n")
		_, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json")
		require.NoError(t, err)
	})

	t.Run("route in message", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, files, "rules:\n  import/no-cycle: error\n")
		stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json")
		require.ErrorIs(t, err, ErrLintFailed)

		var got output.LintOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		require.Len(t, got.Files, 3)
		assert.Equal(t, "Dependency cycle via ./c:1", got.Files[0].Diagnostics[0].Message)
	})

	t.Run("invalid config", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, files, "rules:\n  import/no-cycles: error\n")
		_, _, err := executeInProject(t, root, NewLintCommand())
		require.ErrorIs(t, err, lint.ErrInvalidConfig)
		assert.NotErrorIs(t, err, ErrLintFailed)
	})
}

func TestLint_Text(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No problems found in 2 files")
	clitestutil.AssertNoANSI(t, stdout)

	root = clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")
	stdout, _, err = executeInProject(t, root, NewLintCommand(), "--format", "text")
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, stdout, "src/a.js")
	assert.Contains(t, stdout, "Dependency cycle detected.")
	assert.Contains(t, stdout, "import/no-cycle")
	assert.Contains(t, stdout, "2 problems (2 errors, 0 warnings)")
}

func TestLint_Markdown(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "markdown")
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, stdout, "# Lint Results")
	assert.Contains(t, stdout, "## `src/a.js`")
	assert.Contains(t, stdout, "- **error** `import/no-cycle`")
	clitestutil.AssertValidMarkdown(t, stdout)
	clitestutil.AssertNoANSI(t, stdout)
}

func TestLint_SARIF(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "sarif")
	require.ErrorIs(t, err, ErrLintFailed)

	var got output.SARIFLog
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, output.SARIFVersion, got.Version)
	require.Len(t, got.Runs, 1)

	run := got.Runs[0]
	assert.Equal(t, "nocycle", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "import/no-cycle", run.Tool.Driver.Rules[0].ID)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "src/a.js", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Len(t, run.Results[0].RelatedLocations, 1)
}

func TestLint_Paths(t *testing.T) {
	files := map[string]string{
		"src/a.js": "import './b'\n",
		"src/b.js": "import './a'\n",
		"lib/x.js": "export default 1\n",
	}
	root := clitestutil.SetupTestProject(t, files, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json", "lib")
	require.NoError(t, err)

	var got output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 1, got.Summary.FilesAnalyzed)
}

func TestLint_PathsFollowImportsOutside(t *testing.T) {
	files := map[string]string{
		"src/a/x.js": "import { y } from '../b/y'\nexport const x = 1\n",
		"src/b/y.js": "import { x } from '../a/x'\nexport const y = 2\n",
		"src/c/z.js": "export const z = 3\n",
	}
	root := clitestutil.SetupTestProject(t, files, "")

	tests := []struct {
		name      string
		args      []string
		wantFiles int
		wantPaths []string
	}{
		{name: "whole project", wantFiles: 3, wantPaths: []string{"src/a/x.js", "src/b/y.js"}},
		{name: "one side of the cycle", args: []string{"src/a"}, wantFiles: 1, wantPaths: []string{"src/a/x.js"}},
		{name: "single file", args: []string{"src/b/y.js"}, wantFiles: 1, wantPaths: []string{"src/b/y.js"}},
		{name: "outside the cycle", args: []string{"src/c"}, wantFiles: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json"}, tt.args...)
			stdout, _, err := executeInProject(t, root, NewLintCommand(), args...)
			if len(tt.wantPaths) > 0 {
				require.ErrorIs(t, err, ErrLintFailed)
			} else {
				require.NoError(t, err)
			}

			var got output.LintOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.wantFiles, got.Summary.FilesAnalyzed)
			assert.Equal(t, len(tt.wantPaths), got.Summary.Errors)

			paths := make([]string, 0, len(got.Files))
			for _, f := range got.Files {
				paths = append(paths, f.Path)
			}
			assert.ElementsMatch(t, tt.wantPaths, paths)
		})
	}
}

func TestLint_ImportSyntax(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		wantErrors int
		wantLines  map[string]int
	}{
		{
			name: "commented import",
			files: map[string]string{
				"src/a.js": "// import { b } from './b' (old)\n\nimport { b } from './b'\nexport const a = b\n",
				"src/b.js": "import { a } from './a'\nexport const b = 1\n",
			},
			wantErrors: 2,
			wantLines:  map[string]int{"src/a.js": 3, "src/b.js": 1},
		},
		{
			name: "value import used as a type",
			files: map[string]string{
				"src/a.ts": "import { B } from './b'\nexport class A { b?: B }\n",
				"src/b.ts": "import { A } from './a'\nexport class B {}\nexport const a = new A()\n",
			},
			wantErrors: 2,
			wantLines:  map[string]int{"src/a.ts": 1, "src/b.ts": 1},
		},
		{
			name: "type-only import",
			files: map[string]string{
				"src/a.ts": "import type { B } from './b'\nexport class A { b?: B }\n",
				"src/b.ts": "import { A } from './a'\nexport class B {}\nexport const a = new A()\n",
			},
			wantErrors: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := clitestutil.SetupTestProject(t, tt.files, "")

			stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json")
			if tt.wantErrors > 0 {
				require.ErrorIs(t, err, ErrLintFailed)
			} else {
				require.NoError(t, err)
			}

			var got output.LintOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.wantErrors, got.Summary.Errors)

			lines := make(map[string]int)
			for _, f := range got.Files {
				for _, d := range f.Diagnostics {
					lines[f.Path] = d.Line
				}
			}
			if tt.wantLines == nil {
				tt.wantLines = map[string]int{}
			}
			assert.Equal(t, tt.wantLines, lines)
		})
	}
}

func TestLint_MissingPath(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	_, _, err := executeInProject(t, root, NewLintCommand(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `path "nope"`)
}

func TestLint_ParseErrors(t *testing.T) {
	files := map[string]string{
		"src/a.js":      "import './b'\n",
		"src/b.js":      "export const b = 1\n",
		"src/broken.js": "export const = ;\n",
	}
	root := clitestutil.SetupTestProject(t, files, "")

	stdout, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json")
	require.NoError(t, err)

	var got output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "src/broken.js", got.Errors[0].Path)
}

func TestLint_InvalidRuleFlag(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	tests := []string{"import/no-cycle", "import/no-cycle=fatal", "=error"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			_, _, err := executeInProject(t, root, NewLintCommand(), "--rule", arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid --rule")
		})
	}
}

func TestLint_CacheRecordsRuns(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	_, _, err := executeInProject(t, root, NewLintCommand(), "--format", "json", "--cache")
	require.ErrorIs(t, err, ErrLintFailed)
	_, err = os.Stat(filepath.Join(root, ".nocycle", "state.db"))
	require.NoError(t, err)

	// The second run reads imports from the cache.
	_, _, err = executeInProject(t, root, NewLintCommand(), "--format", "json", "--cache")
	require.ErrorIs(t, err, ErrLintFailed)

	stdout, _, err := executeInProject(t, root, NewRunsCommand(), "--format", "json")
	require.NoError(t, err)

	var runs []output.RunInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, string(core.RunStatusCompleted), run.Status)
		assert.Equal(t, 3, run.Files)
		assert.Equal(t, 1, run.Cycles)
		assert.Equal(t, 2, run.Errors)
	}
}

func TestRuns_NoDatabase(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewRunsCommand(), "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded")
}

func TestBuildLintConfig(t *testing.T) {
	cfg := &config.Config{Plugins: []string{}, Rules: map[string]any{}}

	lintCfg, err := buildLintConfig(cfg, &LintOptions{Rules: []string{"import/no-self-import=warn"}})
	require.NoError(t, err)
	assert.True(t, lintCfg.HasPlugin("import"), "enabling a rule lists its plugin")
	assert.Equal(t, core.SeverityWarn, lintCfg.GetSeverity("import/no-self-import"))

	lintCfg, err = buildLintConfig(&config.Config{
		Plugins: []string{"import"},
		Rules:   map[string]any{"import/no-cycle": "error"},
	}, &LintOptions{Disable: []string{" import/no-cycle "}})
	require.NoError(t, err)
	assert.False(t, lintCfg.IsEnabled("import/no-cycle"))
}

func TestCheckLintResult(t *testing.T) {
	assert.NoError(t, checkLintResult(lint.Summary{}, -1))
	assert.NoError(t, checkLintResult(lint.Summary{Warnings: 100}, -1))
	assert.ErrorIs(t, checkLintResult(lint.Summary{Errors: 1}, -1), ErrLintFailed)
	assert.ErrorIs(t, checkLintResult(lint.Summary{Warnings: 3}, 2), ErrLintFailed)
	assert.NoError(t, checkLintResult(lint.Summary{Warnings: 2}, 2))
}
