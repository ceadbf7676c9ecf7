package core

// LintConfig is the lint configuration object as it appears in a config file:
//
//	plugins: [import]
//	rules:
//	  import/no-cycle: error
//
// Rule values are kept raw here. A value is either a severity ("error", 2)
// or a list whose first element is the severity and whose second element is
// the rule's option map, e.g. ["error", {maxDepth: 3}].
type LintConfig struct {
	Plugins []string       `koanf:"plugins" json:"plugins" yaml:"plugins"`
	Rules   map[string]any `koanf:"rules" json:"rules" yaml:"rules"`
}

// SourceConfig controls which files are analysed.
type SourceConfig struct {
	// Include lists root directories or files, relative to the project root.
	Include []string `koanf:"include" json:"include" yaml:"include"`

	// Extensions lists the file extensions treated as modules.
	Extensions []string `koanf:"extensions" json:"extensions" yaml:"extensions"`

	// Ignore lists doublestar globs matched against project-relative paths.
	Ignore []string `koanf:"ignore" json:"ignore" yaml:"ignore"`
}

// ResolveConfig controls how import specifiers map to files.
type ResolveConfig struct {
	// BaseDir resolves bare specifiers against a project directory
	// (like a tsconfig baseUrl). Empty disables it.
	BaseDir string `koanf:"base_dir" json:"base_dir" yaml:"base_dir"`

	// Alias maps specifier prefixes to project directories, e.g. "@/": "src/".
	Alias map[string]string `koanf:"alias" json:"alias" yaml:"alias"`
}

// CacheConfig controls the on-disk import cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" json:"path" yaml:"path"`
}
