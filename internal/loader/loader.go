package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/nocycle/internal/dag"
	"github.com/leapstack-labs/nocycle/internal/parser"
	"github.com/leapstack-labs/nocycle/internal/resolver"
	"github.com/leapstack-labs/nocycle/pkg/core"
)

// ImportCache stores parsed imports keyed by file content hash.
// internal/state.SQLiteStore satisfies it.
type ImportCache interface {
	GetImports(filePath, contentHash string) ([]core.Import, bool, error)
	PutImports(filePath, contentHash string, imports []core.Import) error
	PruneImports(keep []string) (int, error)
}

// Options configures a Loader.
type Options struct {
	// Root is the project root. Relative paths are made absolute.
	Root string

	Source  core.SourceConfig
	Resolve core.ResolveConfig

	// Workers bounds parallel parsing. Zero uses GOMAXPROCS.
	Workers int

	// Cache is optional.
	Cache ImportCache
}

// Loader builds Projects from a source tree.
type Loader struct {
	opts   Options
	logger *slog.Logger
	parser *parser.Parser
}

// New creates a loader.
func New(opts Options, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	opts.Root = root
	return &Loader{
		opts:   opts,
		logger: logger,
		parser: parser.New(logger, opts.Workers),
	}, nil
}

// Root returns the absolute project root.
func (l *Loader) Root() string {
	return l.opts.Root
}

// Build discovers, parses and resolves every module and returns the graph.
// Files that fail to parse are recorded in Project.Errors; cache failures
// are logged and otherwise ignored.
func (l *Loader) Build(ctx context.Context) (*Project, error) {
	start := time.Now()
	root := l.opts.Root

	l.logger.Debug("discovering modules", slog.String("root", root))
	modules, err := Discover(root, l.opts.Source.Include, l.opts.Source.Extensions, l.opts.Source.Ignore)
	if err != nil {
		return nil, err
	}

	project := &Project{
		Root:       root,
		modules:    modules,
		imports:    make(map[string][]core.Import, len(modules)),
		hashes:     make(map[string]string, len(modules)),
		graph:      dag.NewGraph(),
		components: make(map[string]int),
	}
	project.Stats.Files = len(modules)

	// 1. Read files and take what the cache already knows.
	var pending []parser.Source
	raw := make(map[string][]core.Import, len(modules))
	for _, module := range modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs := filepath.Join(root, filepath.FromSlash(module))
		content, err := os.ReadFile(abs) //nolint:gosec // G304: path comes from Discover
		if err != nil {
			project.Errors = append(project.Errors, &parser.ParseError{File: module, Message: err.Error()})
			project.Stats.Failed++
			continue
		}
		hash := computeHash(content)
		project.hashes[module] = hash

		if imports, ok := l.cached(module, hash); ok {
			raw[module] = imports
			project.Stats.Cached++
			continue
		}
		pending = append(pending, parser.Source{Path: module, AbsPath: abs, Content: content})
	}

	// 2. Parse the rest in parallel.
	results, err := l.parser.ParseAll(ctx, pending)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Err != nil {
			project.Errors = append(project.Errors, res.Err)
			project.Stats.Failed++
			continue
		}
		raw[res.Path] = res.Imports
		project.Stats.Parsed++
		if l.opts.Cache != nil {
			if err := l.opts.Cache.PutImports(res.Path, project.hashes[res.Path], res.Imports); err != nil {
				l.logger.Warn("failed to cache imports", slog.String("path", res.Path), slog.String("error", err.Error()))
			}
		}
	}
	if l.opts.Cache != nil {
		if n, err := l.opts.Cache.PruneImports(modules); err != nil {
			l.logger.Warn("failed to prune import cache", slog.String("error", err.Error()))
		} else if n > 0 {
			l.logger.Debug("pruned stale cache entries", slog.Int("count", n))
		}
	}

	// 3. Resolve specifiers and build the graph.
	for _, module := range modules {
		project.graph.AddNode(module, nil)
	}
	res := resolver.New(resolver.Options{
		Root:       root,
		Extensions: l.opts.Source.Extensions,
		Alias:      l.opts.Resolve.Alias,
		BaseDir:    l.opts.Resolve.BaseDir,
	})
	for _, module := range modules {
		imports, ok := raw[module]
		if !ok {
			continue
		}
		resolved := l.resolveImports(res, project, module, imports)
		project.imports[module] = resolved
	}

	// Failed modules stay in the module list without imports.
	for _, module := range modules {
		if _, ok := project.imports[module]; !ok {
			project.imports[module] = nil
		}
	}

	project.components = project.graph.ComponentIndex()
	project.Stats.Duration = time.Since(start)

	l.logger.Debug("build completed",
		slog.Int("files", project.Stats.Files),
		slog.Int("parsed", project.Stats.Parsed),
		slog.Int("cached", project.Stats.Cached),
		slog.Int("failed", project.Stats.Failed),
		slog.Int64("duration_ms", project.Stats.Duration.Milliseconds()))

	return project, nil
}

func (l *Loader) cached(module, hash string) ([]core.Import, bool) {
	if l.opts.Cache == nil {
		return nil, false
	}
	imports, ok, err := l.opts.Cache.GetImports(module, hash)
	if err != nil {
		l.logger.Warn("failed to read import cache", slog.String("path", module), slog.String("error", err.Error()))
		return nil, false
	}
	return imports, ok
}

func (l *Loader) resolveImports(res *resolver.Resolver, project *Project, module string, imports []core.Import) []core.Import {
	importer := filepath.Join(project.Root, filepath.FromSlash(module))
	out := make([]core.Import, len(imports))

	for i, imp := range imports {
		imp.Resolved = ""
		imp.External = false
		if imp.Pos.File == "" {
			imp.Pos.File = module
		}
		project.Stats.Imports++

		r := res.Resolve(importer, imp.Specifier)
		switch {
		case r.External:
			imp.External = true
			project.Stats.External++
		case !r.Found():
			project.Stats.Unresolved++
			l.logger.Debug("unresolved import",
				slog.String("module", module),
				slog.String("specifier", imp.Specifier))
		default:
			imp.Resolved = relPath(project.Root, r.Path)
			if project.graph.HasNode(imp.Resolved) {
				if err := project.graph.AddEdge(module, imp.Resolved); err == nil {
					project.Stats.Edges++
				}
			} else {
				project.Stats.External++
			}
		}
		out[i] = imp
	}
	return out
}

// relPath returns target relative to root with forward slashes.
func relPath(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}

// computeHash returns a SHA256 hash of file content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
