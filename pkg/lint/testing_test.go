package lint

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// fakeProject is a ProjectContext over a fixed import table.
type fakeProject struct {
	modules []string
	imports map[string][]core.Import
}

func (p *fakeProject) GetModules() []string                   { return p.modules }
func (p *fakeProject) GetImports(module string) []core.Import { return p.imports[module] }
func (p *fakeProject) GetComponent(string) int                { return 0 }

// registerTestPlugin installs an "import" plugin whose no-cycle rule reports
// one diagnostic per module, and clears the registry when the test ends.
func registerTestPlugin(t *testing.T) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)

	RegisterPlugin(Plugin{
		Name:        ImportPlugin,
		DocsBaseURL: "https://docs.example.com/rules/",
		Rules: []Rule{
			WrapRuleDef(RuleDef{
				Plugin:      ImportPlugin,
				Name:        "no-cycle",
				Description: "Forbid import cycles",
				Severity:    core.SeverityError,
				Recommended: true,
				ConfigKeys:  []string{"maxDepth", "ignoreExternal"},
				ValidateOptions: func(opts map[string]any) error {
					if GetIntOption(opts, "maxDepth", 1) < 1 {
						return errors.New("maxDepth must be at least 1")
					}
					return nil
				},
				Check: func(ctx ProjectContext, _ map[string]any) []Diagnostic {
					var diags []Diagnostic
					for _, m := range ctx.GetModules() {
						diags = append(diags, Diagnostic{
							Message: "cycle",
							Pos:     core.Position{File: m, Line: 1, Column: 1},
						})
					}
					return diags
				},
			}),
			WrapRuleDef(RuleDef{
				Plugin:   ImportPlugin,
				Name:     "no-self-import",
				Severity: core.SeverityError,
			}),
		},
	})
}
