// Package lint provides a plugin-based linting framework for module graphs.
//
// # Architecture
//
// The lint package follows a modular architecture with three layers:
//
//  1. Root package (pkg/lint/): shared contracts, the plugin registry, configuration and the Analyzer
//  2. Rule packages (pkg/lint/rules/...): one package per plugin, registered from init()
//  3. Hosts (internal/cli): build a ProjectContext from source files and run the Analyzer
//
// # Plugin Registration
//
// Plugins are registered via init() functions when their packages are imported:
//
//	import _ "github.com/leapstack-labs/nocycle/pkg/lint/rules/imports"
//
// A plugin owns a set of rules whose IDs are prefixed with the plugin name,
// e.g. "import/no-cycle".
//
// # Configuration
//
// A Config mirrors the configuration object consumed by the linter:
//
//	plugins: [import]
//	rules:
//	  import/no-cycle: error
//
// Recommended returns exactly that object. Rules can also be configured
// programmatically:
//
//	cfg := lint.NewConfig()
//	cfg.AddPlugin("import")
//	cfg.SetRule("import/no-cycle", core.SeverityWarn, map[string]any{"maxDepth": 3})
//
// # Running Rules
//
//	if err := cfg.Validate(); err != nil { ... }
//	diags := lint.NewAnalyzer(cfg, logger).Analyze(projectCtx)
package lint
