package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionGetters(t *testing.T) {
	opts := map[string]any{
		"depth":   float64(3),
		"half":    2.5,
		"count":   int64(7),
		"name":    "x",
		"enabled": true,
		"list":    []any{"a", 1, "b"},
		"strs":    []string{"c"},
	}

	assert.Equal(t, 3, GetIntOption(opts, "depth", 0))
	assert.Equal(t, 9, GetIntOption(opts, "half", 9))
	assert.Equal(t, 7, GetIntOption(opts, "count", 0))
	assert.Equal(t, 1, GetIntOption(opts, "name", 1))
	assert.Equal(t, 5, GetIntOption(nil, "depth", 5))

	assert.Equal(t, "x", GetStringOption(opts, "name", ""))
	assert.Equal(t, "d", GetStringOption(opts, "enabled", "d"))
	assert.True(t, GetBoolOption(opts, "enabled", false))
	assert.False(t, GetBoolOption(opts, "missing", false))

	assert.Equal(t, []string{"a", "b"}, GetStringSliceOption(opts, "list", nil))
	assert.Equal(t, []string{"c"}, GetStringSliceOption(opts, "strs", nil))
	assert.Equal(t, []string{"z"}, GetStringSliceOption(opts, "name", []string{"z"}))
}

func TestDecodeOptions(t *testing.T) {
	type options struct {
		MaxDepth       int  `option:"maxDepth"`
		IgnoreExternal bool `option:"ignoreExternal"`
	}

	out := options{MaxDepth: 10}
	require.NoError(t, DecodeOptions(map[string]any{"ignoreExternal": "true"}, &out))
	assert.Equal(t, options{MaxDepth: 10, IgnoreExternal: true}, out)

	require.NoError(t, DecodeOptions(map[string]any{"maxDepth": float64(2)}, &out))
	assert.Equal(t, 2, out.MaxDepth)

	require.NoError(t, DecodeOptions(nil, &out))

	err := DecodeOptions(map[string]any{"maxDepth": map[string]any{"n": 1}}, &out)
	assert.Error(t, err)
}
