// Package rules bundles every built-in lint plugin.
//
// Plugins are organized one per package, named after the plugin:
//   - imports: the "import" plugin (import/no-cycle, import/no-self-import)
//
// To register all plugins with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/nocycle/pkg/lint/rules"
package rules
