package imports

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// Unlimited is the maxDepth spelling for "no depth limit".
const Unlimited = "∞"

// ErrInvalidMaxDepth is returned for unusable maxDepth values.
var ErrInvalidMaxDepth = errors.New("invalid maxDepth")

// NoCycle forbids a module from importing a module that leads back to it.
var NoCycle = lint.RuleDef{
	Plugin:          lint.ImportPlugin,
	Name:            "no-cycle",
	Description:     "Forbid a module from importing a module with a dependency path back to itself.",
	Severity:        core.SeverityError,
	Recommended:     true,
	Check:           checkNoCycle,
	ValidateOptions: validateNoCycleOptions,
	ConfigKeys: []string{
		"maxDepth",
		"ignoreExternal",
		"allowUnsafeDynamicCyclicDependency",
		"disableScc",
	},

	Rationale: `Cyclic imports make evaluation order depend on which module is loaded
first. One side of the cycle observes the other's bindings before they are
initialised, which surfaces as undefined values or TDZ errors at runtime.`,
	BadExample: `// dep-b.js
import './dep-a.js'
export function b() { /* ... */ }

// dep-a.js
import { b } from './dep-b.js' // reported: Dependency cycle detected.`,
	GoodExample: `// shared.js
export function b() { /* ... */ }

// dep-a.js
import { b } from './shared.js'`,
	Fix: `Move the shared code into a module that both sides import, or invert one of
the dependencies. Set maxDepth to limit how long a route is reported.`,
}

// noCycleOptions holds decoded rule options.
type noCycleOptions struct {
	MaxDepth       int  `option:"-"`
	IgnoreExternal bool `option:"ignoreExternal"`
	AllowDynamic   bool `option:"allowUnsafeDynamicCyclicDependency"`
	DisableScc     bool `option:"disableScc"`
}

func parseNoCycleOptions(opts map[string]any) (noCycleOptions, error) {
	o := noCycleOptions{MaxDepth: math.MaxInt}
	if err := lint.DecodeOptions(opts, &o); err != nil {
		return o, err
	}

	raw, ok := opts["maxDepth"]
	if !ok {
		return o, nil
	}
	if s, isString := raw.(string); isString && s == Unlimited {
		return o, nil
	}
	depth := lint.GetIntOption(opts, "maxDepth", 0)
	if depth < 1 {
		return o, fmt.Errorf("%w: want an integer >= 1 or %q, got %v", ErrInvalidMaxDepth, Unlimited, raw)
	}
	o.MaxDepth = depth
	return o, nil
}

func validateNoCycleOptions(opts map[string]any) error {
	_, err := parseNoCycleOptions(opts)
	return err
}

// follows reports whether the rule follows an import edge.
func (o noCycleOptions) follows(imp core.Import) bool {
	if imp.External || imp.Resolved == "" {
		return false
	}
	if o.IgnoreExternal && isNodeModulesPath(imp.Resolved) {
		return false
	}
	if o.AllowDynamic && imp.Kind == core.ImportDynamic {
		return false
	}
	return true
}

func checkNoCycle(ctx lint.ProjectContext, opts map[string]any) []lint.Diagnostic {
	o, err := parseNoCycleOptions(opts)
	if err != nil {
		// Config.Validate rejects these options before analysis.
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, module := range ctx.GetModules() {
		component := ctx.GetComponent(module)
		for _, imp := range ctx.GetImports(module) {
			if !o.follows(imp) || imp.Resolved == module {
				continue
			}
			if !o.DisableScc && (component < 0 || ctx.GetComponent(imp.Resolved) != component) {
				continue
			}

			route, closing, found := findRoute(ctx, module, imp.Resolved, o)
			if !found {
				continue
			}
			diagnostics = append(diagnostics, cycleDiagnostic(module, imp, route, closing))
		}
	}
	return diagnostics
}

// hop is one import on the way back to the importer.
type hop struct {
	module string // module containing the import
	imp    core.Import
}

// findRoute searches breadth-first from target for an import of importer.
// The returned route lists the imports followed from target up to, but not
// including, the closing import that points at importer.
func findRoute(ctx lint.ProjectContext, importer, target string, o noCycleOptions) ([]hop, hop, bool) {
	type step struct {
		module string
		route  []hop
	}

	traversed := make(map[string]bool)
	queue := []step{{module: target}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if traversed[cur.module] {
			continue
		}
		traversed[cur.module] = true

		for _, imp := range ctx.GetImports(cur.module) {
			if !o.follows(imp) || traversed[imp.Resolved] {
				continue
			}
			if imp.Resolved == importer {
				return cur.route, hop{module: cur.module, imp: imp}, true
			}
			if len(cur.route)+1 < o.MaxDepth {
				next := make([]hop, len(cur.route), len(cur.route)+1)
				copy(next, cur.route)
				queue = append(queue, step{
					module: imp.Resolved,
					route:  append(next, hop{module: cur.module, imp: imp}),
				})
			}
		}
	}
	return nil, hop{}, false
}

func cycleDiagnostic(module string, imp core.Import, route []hop, closing hop) lint.Diagnostic {
	related := make([]lint.RelatedInfo, 0, len(route)+1)
	for _, h := range route {
		related = append(related, lint.RelatedInfo{
			Pos:     importPos(h.module, h.imp),
			Message: fmt.Sprintf("%s imports %s", h.module, h.imp.Resolved),
		})
	}
	related = append(related, lint.RelatedInfo{
		Pos:     importPos(closing.module, closing.imp),
		Message: fmt.Sprintf("%s imports %s, closing the cycle", closing.module, module),
	})

	return lint.Diagnostic{
		Message:     cycleMessage(route),
		Pos:         importPos(module, imp),
		RelatedInfo: related,
	}
}

// cycleMessage renders the route as "spec:line=>spec:line".
func cycleMessage(route []hop) string {
	if len(route) == 0 {
		return "Dependency cycle detected."
	}
	parts := make([]string, len(route))
	for i, h := range route {
		parts[i] = fmt.Sprintf("%s:%d", h.imp.Specifier, h.imp.Pos.Line)
	}
	return "Dependency cycle via " + strings.Join(parts, "=>")
}
