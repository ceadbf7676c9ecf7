package loader

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/nocycle/internal/dag"
	"github.com/leapstack-labs/nocycle/internal/parser"
	"github.com/leapstack-labs/nocycle/pkg/core"
	"github.com/leapstack-labs/nocycle/pkg/lint"
)

// Stats describes a Build.
type Stats struct {
	Files      int
	Parsed     int
	Cached     int
	Failed     int
	Imports    int
	Edges      int
	External   int
	Unresolved int
	Duration   time.Duration
}

// Summary returns a human-readable summary.
func (s Stats) Summary() string {
	return fmt.Sprintf(
		"Files: %d (%d parsed, %d cached, %d failed) | Imports: %d (%d internal, %d external, %d unresolved) | Duration: %s",
		s.Files, s.Parsed, s.Cached, s.Failed,
		s.Imports, s.Edges, s.External, s.Unresolved,
		s.Duration.Round(time.Millisecond),
	)
}

// Project is the loaded module graph of a source tree.
type Project struct {
	// Root is the absolute project root.
	Root string

	// Stats counts what Build did.
	Stats Stats

	// Errors holds files that could not be parsed. Their imports are absent
	// from the graph.
	Errors []*parser.ParseError

	modules    []string
	imports    map[string][]core.Import
	hashes     map[string]string
	graph      *dag.Graph
	components map[string]int
}

var _ lint.ProjectContext = (*Project)(nil)

// GetModules returns every module path, sorted.
func (p *Project) GetModules() []string {
	return p.modules
}

// GetImports returns the resolved imports of a module in source order.
func (p *Project) GetImports(module string) []core.Import {
	return p.imports[module]
}

// GetComponent returns the strongly connected component of a module, or -1.
func (p *Project) GetComponent(module string) int {
	if id, ok := p.components[module]; ok {
		return id
	}
	return -1
}

// Graph returns the module graph. Edges point from importer to imported.
func (p *Project) Graph() *dag.Graph {
	return p.graph
}

// Hash returns the content hash of a module.
func (p *Project) Hash(module string) string {
	return p.hashes[module]
}

// HasModule reports whether path is a module of the project.
func (p *Project) HasModule(path string) bool {
	_, ok := p.imports[path]
	return ok
}

// Cycles returns every import cycle in the graph.
func (p *Project) Cycles() []dag.Cycle {
	return p.graph.Cycles()
}
