// Package loader discovers JavaScript and TypeScript modules under a project
// root, extracts their imports and builds the module graph the lint rules
// run against.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/nocycle/internal/resolver"
)

// DefaultIgnore lists globs that are never analysed.
var DefaultIgnore = []string{"**/node_modules/**", "**/.git/**"}

// declaration files carry types only and never execute imports.
var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// Discover returns the project-relative, slash-separated paths of every
// module under the include roots, sorted and without duplicates.
func Discover(root string, include, extensions, ignore []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"."}
	}
	if len(extensions) == 0 {
		extensions = resolver.DefaultExtensions
	}
	ignore = append(append([]string(nil), DefaultIgnore...), ignore...)
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	for _, inc := range include {
		start := inc
		if !filepath.IsAbs(start) {
			start = filepath.Join(root, filepath.FromSlash(inc))
		}
		if _, err := os.Stat(start); err != nil {
			return nil, fmt.Errorf("include path %q: %w", inc, err)
		}

		err := filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && isIgnored(ignore, rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if !isModule(rel, exts) || isIgnored(ignore, rel) {
				return nil
			}
			seen[rel] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", inc, err)
		}
	}

	modules := make([]string, 0, len(seen))
	for rel := range seen {
		modules = append(modules, rel)
	}
	sort.Strings(modules)
	return modules, nil
}

func isModule(rel string, exts map[string]bool) bool {
	lower := strings.ToLower(rel)
	for _, suffix := range declarationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return exts[path.Ext(lower)]
}

func isIgnored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
