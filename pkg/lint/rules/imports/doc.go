// Package imports provides the "import" plugin: lint rules about the module
// import graph.
//
// Rules in this package:
//   - import/no-cycle: a module must not be reachable from the modules it imports
//   - import/no-self-import: a module must not import itself
//
// Import the package with a blank identifier to register the plugin:
//
//	import _ "github.com/leapstack-labs/nocycle/pkg/lint/rules/imports"
package imports
