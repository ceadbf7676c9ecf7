package imports

import (
	"strings"

	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// DocsBaseURL is where the rule documentation lives.
const DocsBaseURL = "https://github.com/import-js/eslint-plugin-import/blob/main/docs/rules"

func init() {
	lint.RegisterPlugin(Plugin())
}

// Plugin returns the "import" plugin with all of its rules.
func Plugin() lint.Plugin {
	return lint.Plugin{
		Name:        lint.ImportPlugin,
		Description: "Rules about ES module and CommonJS import graphs",
		DocsBaseURL: DocsBaseURL,
		Rules: []lint.Rule{
			lint.WrapRuleDef(NoCycle),
			lint.WrapRuleDef(NoSelfImport),
		},
	}
}

// importPos returns the position of an import with its file filled in.
func importPos(module string, imp core.Import) core.Position {
	pos := imp.Pos
	if pos.File == "" {
		pos.File = module
	}
	return pos
}

// isNodeModulesPath reports whether a resolved path lies inside node_modules.
func isNodeModulesPath(path string) bool {
	return strings.HasPrefix(path, "node_modules/") || strings.Contains(path, "/node_modules/")
}
