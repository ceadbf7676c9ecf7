// Package config provides configuration management for the nocycle CLI.
//
// The lint configuration object (plugins and rules) lives at the top level of
// the config file next to the source, resolve and cache sections. Shared
// section types are defined in pkg/core and re-exported here.
package config

import (
	"fmt"

	"github.com/leapstack-labs/nocycle/internal/cli/output"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// SourceConfig is an alias for the shared source configuration.
type SourceConfig = core.SourceConfig

// ResolveConfig is an alias for the shared resolver configuration.
type ResolveConfig = core.ResolveConfig

// CacheConfig is an alias for the shared cache configuration.
type CacheConfig = core.CacheConfig

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory paths are resolved against. It is never
	// read from the config file.
	ProjectRoot string `koanf:"-" json:"-" yaml:"-"`

	Verbose      bool           `koanf:"verbose" json:"verbose" yaml:"verbose"`
	OutputFormat string         `koanf:"output" json:"output" yaml:"output"`
	Plugins      []string       `koanf:"plugins" json:"plugins" yaml:"plugins"`
	Rules        map[string]any `koanf:"rules" json:"rules" yaml:"rules"`
	Source       SourceConfig   `koanf:"source" json:"source" yaml:"source"`
	Resolve      ResolveConfig  `koanf:"resolve" json:"resolve" yaml:"resolve"`
	Cache        CacheConfig    `koanf:"cache" json:"cache" yaml:"cache"`
}

// Default configuration values.
const (
	DefaultStateFile = ".nocycle/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are searched, in order, in the project root.
var ConfigFileNames = []string{".nocycle.yaml", ".nocycle.yml", "nocycle.yaml", ".nocycle.json"}

// LintConfig returns the raw lint configuration object.
func (c *Config) LintConfig() core.LintConfig {
	return core.LintConfig{Plugins: c.Plugins, Rules: c.Rules}
}

// BuildLintConfig parses and validates the lint configuration object.
func (c *Config) BuildLintConfig() (*lint.Config, error) {
	cfg, err := lint.FromLintConfig(c.LintConfig())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values that are not checked by decoding.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}
