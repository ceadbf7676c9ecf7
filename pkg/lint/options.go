package lint

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

// GetOption extracts a typed option with a default value.
func GetOption[T any](opts map[string]any, key string, defaultVal T) T {
	v, ok := lookup(opts, key)
	if !ok {
		return defaultVal
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	return defaultVal
}

// GetIntOption extracts an int option, handling float64 from JSON.
// Non-integral or out-of-range floats fall back to the default.
func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	v, ok := lookup(opts, key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return defaultVal
		}
		return int(n)
	default:
		return defaultVal
	}
}

// GetStringOption extracts a string option.
func GetStringOption(opts map[string]any, key string, defaultVal string) string {
	return GetOption(opts, key, defaultVal)
}

// GetBoolOption extracts a bool option.
func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	return GetOption(opts, key, defaultVal)
}

// GetStringSliceOption extracts a string slice option.
func GetStringSliceOption(opts map[string]any, key string, defaultVal []string) []string {
	v, ok := lookup(opts, key)
	if !ok {
		return defaultVal
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return defaultVal
	}
}

// DecodeOptions decodes rule options into a struct tagged with `option:"..."`.
// Values are weakly typed so that "true" and 1 decode into bool fields and
// JSON numbers decode into int fields. Keys missing from opts keep the value
// already held by out.
func DecodeOptions(opts map[string]any, out any) error {
	if len(opts) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "option",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create option decoder: %w", err)
	}
	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("failed to decode rule options: %w", err)
	}
	return nil
}

func lookup(opts map[string]any, key string) (any, bool) {
	if opts == nil {
		return nil, false
	}
	v, ok := opts[key]
	return v, ok
}
