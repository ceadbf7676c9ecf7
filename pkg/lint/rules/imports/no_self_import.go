package imports

import (
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// NoSelfImport forbids a module from importing itself.
var NoSelfImport = lint.RuleDef{
	Plugin:      lint.ImportPlugin,
	Name:        "no-self-import",
	Description: "Forbid a module from importing itself.",
	Severity:    core.SeverityError,
	Check:       checkNoSelfImport,

	Rationale: `A module that imports itself receives its own partially initialised
exports. It is almost always a typo in a relative path.`,
	BadExample: `// foo.js
import foo from './foo';`,
	GoodExample: `// foo.js
import bar from './bar';`,
}

func checkNoSelfImport(ctx lint.ProjectContext, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, module := range ctx.GetModules() {
		for _, imp := range ctx.GetImports(module) {
			if imp.External || imp.Resolved != module {
				continue
			}
			diagnostics = append(diagnostics, lint.Diagnostic{
				Message: "Module imports itself.",
				Pos:     importPos(module, imp),
			})
		}
	}
	return diagnostics
}
