package lint

import (
	"testing"

	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommended_Shape(t *testing.T) {
	m := Recommended().Map()

	require.Len(t, m, 2)
	assert.Contains(t, m, "plugins")
	assert.Contains(t, m, "rules")

	plugins, ok := m["plugins"].([]string)
	require.True(t, ok)
	assert.Contains(t, plugins, "import")

	rules, ok := m["rules"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", rules["import/no-cycle"])
}

func TestRecommended_Idempotent(t *testing.T) {
	first := Recommended()
	second := Recommended()
	assert.Equal(t, first, second)

	// Mutating one value must not leak into the next.
	first.Disable(NoCycleRule)
	assert.Equal(t, core.SeverityError, Recommended().GetSeverity(NoCycleRule))
}

func TestConfig_SetRuleAndDisable(t *testing.T) {
	cfg := NewConfig().AddPlugin("import").AddPlugin("import")
	assert.Equal(t, []string{"import"}, cfg.Plugins)

	cfg.SetRule(NoCycleRule, core.SeverityWarn, map[string]any{"maxDepth": 3})
	assert.True(t, cfg.IsEnabled(NoCycleRule))
	assert.Equal(t, core.SeverityWarn, cfg.GetSeverity(NoCycleRule))
	assert.Equal(t, 3, cfg.GetRuleOptions(NoCycleRule)["maxDepth"])

	cfg.Disable(NoCycleRule)
	assert.False(t, cfg.IsEnabled(NoCycleRule))
	assert.Equal(t, 3, cfg.GetRuleOptions(NoCycleRule)["maxDepth"], "disable keeps options")
	assert.Empty(t, cfg.EnabledRules())

	assert.Equal(t, core.SeverityOff, cfg.GetSeverity("import/unknown"))
}

func TestConfig_NilReceiver(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsEnabled(NoCycleRule))
	assert.Nil(t, cfg.GetRuleOptions(NoCycleRule))
	assert.Nil(t, cfg.EnabledRules())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, map[string]any{"plugins": []string{}, "rules": map[string]any{}}, cfg.Map())
}

func TestConfig_Clone(t *testing.T) {
	cfg := Recommended().SetRule("import/no-self-import", core.SeverityWarn, map[string]any{"x": 1})
	clone := cfg.Clone()
	require.Equal(t, cfg, clone)

	clone.Plugins[0] = "other"
	clone.Rules["import/no-self-import"].Options["x"] = 2
	assert.Equal(t, "import", cfg.Plugins[0])
	assert.Equal(t, 1, cfg.Rules["import/no-self-import"].Options["x"])
}

func TestConfig_MapWithOptions(t *testing.T) {
	cfg := Recommended().SetRule(NoCycleRule, core.SeverityError, map[string]any{"maxDepth": 2})
	rules := cfg.Map()["rules"].(map[string]any)
	assert.Equal(t, []any{"error", map[string]any{"maxDepth": 2}}, rules[NoCycleRule])
}

func TestParseRuleSetting(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    RuleSetting
		wantErr bool
	}{
		{name: "string", input: "error", want: RuleSetting{Severity: core.SeverityError}},
		{name: "int", input: 1, want: RuleSetting{Severity: core.SeverityWarn}},
		{name: "json number", input: float64(0), want: RuleSetting{Severity: core.SeverityOff}},
		{name: "list severity only", input: []any{"warn"}, want: RuleSetting{Severity: core.SeverityWarn}},
		{name: "string list", input: []string{"error"}, want: RuleSetting{Severity: core.SeverityError}},
		{
			name:  "list with options",
			input: []any{2, map[string]any{"maxDepth": 1}},
			want:  RuleSetting{Severity: core.SeverityError, Options: map[string]any{"maxDepth": 1}},
		},
		{
			name:  "yaml v2 style map",
			input: []any{"error", map[any]any{"ignoreExternal": true}},
			want:  RuleSetting{Severity: core.SeverityError, Options: map[string]any{"ignoreExternal": true}},
		},
		{name: "empty list", input: []any{}, wantErr: true},
		{name: "too many elements", input: []any{"error", map[string]any{}, "x"}, wantErr: true},
		{name: "options not a map", input: []any{"error", "deep"}, wantErr: true},
		{name: "bad severity", input: "fatal", wantErr: true},
		{name: "out of range", input: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRuleSetting(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromLintConfig(t *testing.T) {
	cfg, err := FromLintConfig(core.LintConfig{
		Plugins: []string{"import"},
		Rules:   map[string]any{"import/no-cycle": "error"},
	})
	require.NoError(t, err)
	assert.Equal(t, Recommended(), cfg)

	_, err = FromLintConfig(core.LintConfig{
		Rules: map[string]any{"import/no-cycle": "loud"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `rule "import/no-cycle"`)
}

func TestFromLintConfig_RoundTrip(t *testing.T) {
	cfg := Recommended().SetRule(NoCycleRule, core.SeverityWarn, map[string]any{"maxDepth": 4})
	back, err := FromLintConfig(cfg.LintConfig())
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestConfig_Validate(t *testing.T) {
	registerTestPlugin(t)

	t.Run("recommended is valid", func(t *testing.T) {
		assert.NoError(t, Recommended().Validate())
	})

	t.Run("unknown plugin", func(t *testing.T) {
		err := Recommended().AddPlugin("react").Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), `plugin "react" is not available`)
	})

	t.Run("unknown rule suggests closest", func(t *testing.T) {
		err := Recommended().SetRule("import/no-cylce", core.SeverityError, nil).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `did you mean "import/no-cycle"?`)
	})

	t.Run("unknown rule without suggestion", func(t *testing.T) {
		err := Recommended().SetRule("jsx/whatever", core.SeverityError, nil).Validate()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "did you mean")
	})

	t.Run("enabled rule needs its plugin", func(t *testing.T) {
		cfg := NewConfig().SetRule(NoCycleRule, core.SeverityError, nil)
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `requires plugin "import"`)

		cfg.Disable(NoCycleRule)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown option", func(t *testing.T) {
		cfg := Recommended().SetRule(NoCycleRule, core.SeverityError, map[string]any{"depth": 1})
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown option "depth"`)
	})

	t.Run("option rejected by rule", func(t *testing.T) {
		cfg := Recommended().SetRule(NoCycleRule, core.SeverityError, map[string]any{"maxDepth": 0})
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maxDepth must be at least 1")
	})

	t.Run("invalid severity", func(t *testing.T) {
		cfg := Recommended().SetRule(NoCycleRule, core.Severity(7), nil)
		assert.Error(t, cfg.Validate())
	})
}
