package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	clitestutil "github.com/leapstack-labs/nocycle/internal/cli/testutil"
)

func TestGraph_JSON(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "json")
	require.NoError(t, err, "graph reports cycles without failing")

	var got output.GraphOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Stats.Modules)
	assert.Equal(t, 3, got.Stats.Edges)
	assert.Equal(t, 1, got.Stats.Cycles)
	assert.Equal(t, 2, got.Stats.Components)
	assert.Equal(t, 1, got.Stats.Roots)

	require.Len(t, got.Cycles, 1)
	assert.ElementsMatch(t, []string{"src/a.js", "src/b.js"}, got.Cycles[0].Modules)
	require.NotEmpty(t, got.Cycles[0].Path)
	assert.Equal(t, got.Cycles[0].Path[0], got.Cycles[0].Path[len(got.Cycles[0].Path)-1])
}

func TestGraph_Acyclic(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "json")
	require.NoError(t, err)

	var got output.GraphOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 2, got.Stats.Modules)
	assert.Equal(t, 1, got.Stats.Edges)
	assert.Equal(t, 1, got.Stats.External)
	assert.Equal(t, 0, got.Stats.Cycles)
	assert.Empty(t, got.Cycles)
}

func TestGraph_Text(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "text", "--modules")
	require.NoError(t, err)
	clitestutil.AssertNoANSI(t, stdout)
	for _, want := range []string{"Module Graph", "Cycles (1)", "imported by:", "→"} {
		clitestutil.AssertContains(t, stdout, want)
	}
}

func TestGraph_Markdown(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

	stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "markdown", "-m")
	require.NoError(t, err)
	clitestutil.AssertValidMarkdown(t, stdout)
	for _, want := range []string{"# Module Graph", "- `src/index.ts`", "  - imports: src/util.ts", "None"} {
		clitestutil.AssertContains(t, stdout, want)
	}
}

func TestGraph_Paths(t *testing.T) {
	root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

	tests := []struct {
		name        string
		path        string
		wantModules int
		wantCycles  int
	}{
		{name: "module in a cycle", path: "src/a.js", wantModules: 1, wantCycles: 1},
		{name: "module outside the cycle", path: "src/c.js", wantModules: 1, wantCycles: 0},
		{name: "directory", path: "src", wantModules: 3, wantCycles: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "json", tt.path)
			require.NoError(t, err)

			var got output.GraphOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.wantModules, got.Stats.Modules)
			assert.Equal(t, tt.wantCycles, got.Stats.Cycles)
			assert.Len(t, got.Cycles, tt.wantCycles)
			assert.Equal(t, tt.wantCycles == 0, got.Stats.Acyclic)
		})
	}
}

func TestGraph_Order(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

		stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "json", "--order")
		require.NoError(t, err)

		var got output.GraphOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.True(t, got.Stats.Acyclic)
		assert.Equal(t, []string{"src/util.ts", "src/index.ts"}, got.Order)
	})

	t.Run("acyclic markdown", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, clitestutil.AcyclicProject, "")

		stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "markdown", "--order")
		require.NoError(t, err)
		clitestutil.AssertContains(t, stdout, "## Load Order")
		clitestutil.AssertContains(t, stdout, "1. `src/util.ts`")
	})

	t.Run("cyclic", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

		stdout, stderr, err := executeInProject(t, root, NewGraphCommand(), "--format", "text", "--order")
		require.NoError(t, err)
		clitestutil.AssertNotContains(t, stdout, "Load Order")
		clitestutil.AssertContains(t, stderr, "no load order: cycle detected")
	})

	t.Run("cyclic json omits order", func(t *testing.T) {
		root := clitestutil.SetupTestProject(t, clitestutil.CyclicProject, "")

		stdout, _, err := executeInProject(t, root, NewGraphCommand(), "--format", "json", "--order")
		require.NoError(t, err)

		var got output.GraphOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.False(t, got.Stats.Acyclic)
		assert.Nil(t, got.Order)
	})
}
