// Package parser extracts import records from JavaScript and TypeScript
// source files. It runs esbuild over each file with every import marked
// external, so only the file itself is parsed, and collects the specifiers
// esbuild reports. Positions are then located in the source text.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// ParseError is a syntax error reported for a single file.
type ParseError struct {
	File    string
	Line    int // 1-based; 0 when unknown
	Column  int // 1-based
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Source is a file to parse.
type Source struct {
	// Path is the project-relative module path used in results.
	Path string
	// AbsPath is the file location on disk.
	AbsPath string
	// Content is the file text.
	Content []byte
}

// Result holds the imports of one source, or the error that prevented
// parsing it.
type Result struct {
	Path    string
	Imports []core.Import
	Err     *ParseError
}

// Parser extracts imports using esbuild.
type Parser struct {
	logger  *slog.Logger
	workers int
}

// New creates a parser. workers bounds the number of files parsed at once;
// zero or less uses GOMAXPROCS.
func New(logger *slog.Logger, workers int) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parser{logger: logger, workers: workers}
}

// ParseAll parses every source concurrently. Results are returned in the
// order of sources. Per-file syntax errors are reported in Result.Err;
// the returned error is only set when ctx is cancelled.
func (p *Parser) ParseAll(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			imports, err := p.ParseFile(src.Path, src.Content)
			results[i] = Result{Path: src.Path, Imports: imports}
			if err != nil {
				results[i].Err = err
				p.logger.Debug("parse failed", slog.String("path", src.Path), slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parsing cancelled: %w", err)
	}
	return results, nil
}

// tsconfigRaw keeps TypeScript imports whose bindings are unused or only
// used as types. Only "import type" and "export type" are dropped.
const tsconfigRaw = `{"compilerOptions":{"verbatimModuleSyntax":true}}`

// ParseFile returns the import records of one file in source order.
// path selects the syntax by extension and is used in error messages and
// positions.
func (p *Parser) ParseFile(path string, content []byte) ([]core.Import, *ParseError) {
	collector := &recordCollector{}

	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   string(content),
			Sourcefile: path,
			Loader:     LoaderFor(path),
		},
		Bundle:      true,
		Write:       false,
		Outdir:      "out",
		Format:      api.FormatESModule,
		LogLevel:    api.LogLevelSilent,
		TsconfigRaw: tsconfigRaw,
		Plugins:     []api.Plugin{collector.plugin()},
	})

	if len(result.Errors) > 0 {
		return nil, toParseError(path, result.Errors[0])
	}

	imports := locate(string(content), collector.sorted())
	for i := range imports {
		imports[i].Pos.File = path
	}
	return imports, nil
}

// LoaderFor picks the esbuild loader for a file extension.
// Plain .js files are parsed as JSX since React code commonly uses it.
func LoaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx":
		return api.LoaderJSX
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	default:
		return api.LoaderJS
	}
}

// record is an import reported by esbuild: a specifier and how it was used.
type record struct {
	specifier string
	kind      core.ImportKind
}

// recordCollector gathers import records from esbuild resolve callbacks,
// which may run on several goroutines.
type recordCollector struct {
	mu      sync.Mutex
	seen    map[record]bool
	records []record
}

func (c *recordCollector) plugin() api.Plugin {
	return api.Plugin{
		Name: "collect-imports",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if kind, ok := importKind(args.Kind); ok {
					c.add(record{specifier: args.Path, kind: kind})
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}
}

func (c *recordCollector) add(r record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[record]bool)
	}
	if c.seen[r] {
		return
	}
	c.seen[r] = true
	c.records = append(c.records, r)
}

// sorted returns the records ordered by specifier then kind.
func (c *recordCollector) sorted() []record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]record(nil), c.records...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].specifier != out[j].specifier {
			return out[i].specifier < out[j].specifier
		}
		return out[i].kind < out[j].kind
	})
	return out
}

// importKind maps esbuild resolve kinds onto import kinds. Entry points,
// require.resolve and CSS references are not module imports.
func importKind(kind api.ResolveKind) (core.ImportKind, bool) {
	switch kind {
	case api.ResolveJSImportStatement:
		return core.ImportStatic, true
	case api.ResolveJSRequireCall:
		return core.ImportRequire, true
	case api.ResolveJSDynamicImport:
		return core.ImportDynamic, true
	default:
		return "", false
	}
}

func toParseError(path string, msg api.Message) *ParseError {
	perr := &ParseError{File: path, Message: msg.Text}
	if msg.Location != nil {
		perr.Line = msg.Location.Line
		perr.Column = msg.Location.Column + 1
	}
	return perr
}
