// Package resolver maps import specifiers to files. It follows the Node.js
// lookup rules bundlers use: relative and absolute paths, extension probing,
// directory index files, package.json "main" and node_modules directories,
// plus configurable aliases and a base directory for bare specifiers.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/antchfx/jsonquery"
)

// DefaultExtensions are probed, in order, when a specifier has no extension.
var DefaultExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// TypeScript sources are imported with the extension of their output file.
var tsAlternates = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// Options configures a Resolver.
type Options struct {
	// Root is the absolute project root. Alias targets and BaseDir are
	// relative to it.
	Root string

	// Extensions are probed in order. Defaults to DefaultExtensions.
	Extensions []string

	// Alias maps specifier prefixes to directories, e.g. "@/" -> "src/".
	Alias map[string]string

	// BaseDir resolves bare specifiers against a directory before
	// node_modules is searched. Empty disables it.
	BaseDir string
}

// Result is the outcome of resolving one specifier.
type Result struct {
	// Path is the absolute path of the resolved file, or empty.
	Path string

	// External is set for node builtins and packages that are not installed.
	// An unresolved relative or aliased specifier is neither found nor
	// external.
	External bool
}

// Found reports whether the specifier resolved to a file.
func (r Result) Found() bool { return r.Path != "" }

type alias struct {
	prefix string
	target string
}

type entryKind int

const (
	entryMissing entryKind = iota
	entryFile
	entryDir
)

// Resolver resolves specifiers against the file system. It caches every
// lookup and is not safe for concurrent use.
type Resolver struct {
	root       string
	extensions []string
	aliases    []alias
	baseDir    string

	entries map[string]entryKind
	mains   map[string]string
}

// New creates a resolver.
func New(opts Options) *Resolver {
	r := &Resolver{
		root:       filepath.Clean(opts.Root),
		extensions: opts.Extensions,
		entries:    make(map[string]entryKind),
		mains:      make(map[string]string),
	}
	if len(r.extensions) == 0 {
		r.extensions = DefaultExtensions
	}
	if opts.BaseDir != "" {
		r.baseDir = r.abs(opts.BaseDir)
	}

	for prefix, target := range opts.Alias {
		r.aliases = append(r.aliases, alias{
			prefix: strings.TrimSuffix(prefix, "/"),
			target: r.abs(target),
		})
	}
	// Longest prefix wins.
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
			return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
		}
		return r.aliases[i].prefix < r.aliases[j].prefix
	})
	return r
}

// Resolve finds the file that importer (an absolute path) refers to with spec.
func (r *Resolver) Resolve(importer, spec string) Result {
	spec = stripQuery(spec)
	if spec == "" {
		return Result{}
	}

	if IsBuiltin(spec) {
		return Result{External: true}
	}

	if isRelative(spec) || filepath.IsAbs(spec) {
		base := spec
		if !filepath.IsAbs(spec) {
			base = filepath.Join(filepath.Dir(importer), filepath.FromSlash(spec))
		}
		path, _ := r.resolvePath(base)
		return Result{Path: path}
	}

	for _, a := range r.aliases {
		rest, ok := matchAlias(spec, a.prefix)
		if !ok {
			continue
		}
		path, _ := r.resolvePath(filepath.Join(a.target, filepath.FromSlash(rest)))
		return Result{Path: path}
	}

	if r.baseDir != "" {
		if path, ok := r.resolvePath(filepath.Join(r.baseDir, filepath.FromSlash(spec))); ok {
			return Result{Path: path}
		}
	}

	if path, ok := r.resolveNodeModules(filepath.Dir(importer), spec); ok {
		return Result{Path: path}
	}
	return Result{External: true}
}

// resolveNodeModules searches node_modules directories from dir upwards.
func (r *Resolver) resolveNodeModules(dir, spec string) (string, bool) {
	for {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(spec))
			if path, ok := r.resolvePath(candidate); ok {
				return path, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// resolvePath resolves base as a file, then as a directory.
func (r *Resolver) resolvePath(base string) (string, bool) {
	if path, ok := r.resolveFile(base); ok {
		return path, true
	}
	if r.stat(base) != entryDir {
		return "", false
	}
	if main := r.packageMain(base); main != "" {
		target := filepath.Join(base, filepath.FromSlash(main))
		if path, ok := r.resolveFile(target); ok {
			return path, true
		}
		if path, ok := r.resolveIndex(target); ok {
			return path, true
		}
	}
	return r.resolveIndex(base)
}

func (r *Resolver) resolveFile(base string) (string, bool) {
	if r.stat(base) == entryFile {
		return base, true
	}
	for _, ext := range r.extensions {
		if r.stat(base+ext) == entryFile {
			return base + ext, true
		}
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for _, alt := range tsAlternates[ext] {
		if r.stat(stem+alt) == entryFile {
			return stem + alt, true
		}
	}
	return "", false
}

func (r *Resolver) resolveIndex(dir string) (string, bool) {
	for _, ext := range r.extensions {
		candidate := filepath.Join(dir, "index"+ext)
		if r.stat(candidate) == entryFile {
			return candidate, true
		}
	}
	return "", false
}

// packageMain returns the "main" field of dir/package.json, or "".
func (r *Resolver) packageMain(dir string) string {
	if main, ok := r.mains[dir]; ok {
		return main
	}
	main := readPackageMain(filepath.Join(dir, "package.json"))
	r.mains[dir] = main
	return main
}

func readPackageMain(path string) string {
	f, err := os.Open(path) //nolint:gosec // G304: path is built from a resolved import
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	doc, err := jsonquery.Parse(f)
	if err != nil {
		return ""
	}
	node, err := jsonquery.Query(doc, "main")
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}

func (r *Resolver) stat(path string) entryKind {
	if kind, ok := r.entries[path]; ok {
		return kind
	}
	kind := entryMissing
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			kind = entryDir
		} else {
			kind = entryFile
		}
	}
	r.entries[path] = kind
	return kind
}

func (r *Resolver) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.root, filepath.FromSlash(path))
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// matchAlias reports whether spec starts with the alias prefix as a whole
// path segment and returns the remainder.
func matchAlias(spec, prefix string) (string, bool) {
	if spec == prefix {
		return "", true
	}
	if strings.HasPrefix(spec, prefix+"/") {
		return spec[len(prefix)+1:], true
	}
	return "", false
}

// stripQuery drops bundler query and hash suffixes such as "?raw".
func stripQuery(spec string) string {
	if i := strings.IndexAny(spec, "?#"); i > 0 {
		return spec[:i]
	}
	return spec
}
