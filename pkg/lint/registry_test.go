package lint

import (
	"testing"

	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registerTestPlugin(t)

	p, ok := GetPlugin(ImportPlugin)
	require.True(t, ok)
	assert.Len(t, p.Rules, 2)

	_, ok = GetPlugin("react")
	assert.False(t, ok)

	assert.Equal(t, []string{"import/no-cycle", "import/no-self-import"}, RuleIDs())
	assert.Equal(t, 2, Count())

	rule, ok := GetRuleByID(NoCycleRule)
	require.True(t, ok)
	assert.Equal(t, "no-cycle", rule.Name())
	assert.Equal(t, ImportPlugin, rule.Plugin())

	infos := AllRules()
	require.Len(t, infos, 2)
	assert.Equal(t, core.RuleInfo{
		ID:              "import/no-cycle",
		Plugin:          "import",
		Name:            "no-cycle",
		Description:     "Forbid import cycles",
		DefaultSeverity: core.SeverityError,
		Recommended:     true,
		ConfigKeys:      []string{"maxDepth", "ignoreExternal"},
	}, infos[0])

	assert.Len(t, AllPlugins(), 1)

	Clear()
	assert.Zero(t, Count())
	assert.Empty(t, AllPlugins())
}

func TestWrapRuleDef_NilCheck(t *testing.T) {
	rule := WrapRuleDef(RuleDef{Plugin: "x", Name: "y"})
	assert.Equal(t, "x/y", rule.ID())
	assert.Nil(t, rule.Check(&fakeProject{}, nil))

	unwrapped, ok := rule.(interface{ Unwrap() RuleDef })
	require.True(t, ok)
	assert.Equal(t, "y", unwrapped.Unwrap().Name)
}

func TestRuleID(t *testing.T) {
	assert.Equal(t, "import/no-cycle", RuleID("import", "no-cycle"))
	assert.Equal(t, "no-cycle", RuleID("", "no-cycle"))
}

func TestBuildDocURL(t *testing.T) {
	registerTestPlugin(t)

	assert.Equal(t, "https://docs.example.com/rules/no-cycle.md", BuildDocURL(NoCycleRule))
	assert.Empty(t, BuildDocURL("react/jsx-key"))
	assert.Empty(t, BuildDocURL("no-slash"))
}
