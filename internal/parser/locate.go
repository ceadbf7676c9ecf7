package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// occurrence is a quoted specifier found in the source text.
type occurrence struct {
	offset int
	kind   core.ImportKind
}

// locate assigns source positions to the records reported by esbuild.
// Every string literal holding a reported specifier whose surrounding
// syntax matches the reported kind becomes one import. Text in comments and
// inside other literals is never matched. A record that cannot be matched
// to syntax falls back to the first literal holding its specifier, or to an
// unknown position. The result is in source order.
func locate(src string, records []record) []core.Import {
	var imports []core.Import
	cache := make(map[string][]occurrence)
	starts := literalStarts(src)

	for _, rec := range records {
		occs, ok := cache[rec.specifier]
		if !ok {
			occs = findOccurrences(src, rec.specifier, starts)
			cache[rec.specifier] = occs
		}

		matched := false
		for _, occ := range occs {
			if occ.kind == rec.kind {
				imports = append(imports, newImport(src, rec, occ.offset))
				matched = true
			}
		}
		if matched {
			continue
		}

		if offset := firstQuoted(src, rec.specifier, starts); offset >= 0 {
			imports = append(imports, newImport(src, rec, offset))
		} else {
			imports = append(imports, core.Import{Specifier: rec.specifier, Kind: rec.kind})
		}
	}

	sort.SliceStable(imports, func(i, j int) bool {
		a, b := imports[i].Pos, imports[j].Pos
		if a.IsValid() != b.IsValid() {
			return a.IsValid()
		}
		return a.Offset < b.Offset
	})
	return imports
}

func newImport(src string, rec record, offset int) core.Import {
	line, col := lineColumn(src, offset)
	return core.Import{
		Specifier: rec.specifier,
		Kind:      rec.kind,
		Pos:       core.Position{Line: line, Column: col, Offset: offset},
	}
}

// findOccurrences returns every string literal holding spec that sits in
// import, export-from, require() or import() syntax. starts holds the
// offsets of literals in code.
func findOccurrences(src, spec string, starts map[int]bool) []occurrence {
	var occs []occurrence
	for _, quote := range []string{`'`, `"`, "`"} {
		needle := quote + spec + quote
		for start := 0; ; {
			idx := strings.Index(src[start:], needle)
			if idx < 0 {
				break
			}
			offset := start + idx
			if !starts[offset] {
				start = offset + 1
				continue
			}
			if kind, ok := classify(src, offset); ok {
				occs = append(occs, occurrence{offset: offset, kind: kind})
			}
			start = offset + len(needle)
		}
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].offset < occs[j].offset })
	return occs
}

// firstQuoted returns the offset of the first literal in code holding spec,
// or -1.
func firstQuoted(src, spec string, starts map[int]bool) int {
	best := -1
	for _, quote := range []string{`'`, `"`, "`"} {
		needle := quote + spec + quote
		for start := 0; ; {
			idx := strings.Index(src[start:], needle)
			if idx < 0 {
				break
			}
			offset := start + idx
			if starts[offset] {
				if best < 0 || offset < best {
					best = offset
				}
				break
			}
			start = offset + 1
		}
	}
	return best
}

// classify looks at the tokens before a string literal starting at offset.
//
//	import x from './a'   from      -> static
//	import './a'          import    -> static
//	require('./a')        require(  -> require
//	import('./a')         import(   -> dynamic
func classify(src string, offset int) (core.ImportKind, bool) {
	i := skipSpaceBack(src, offset)
	if i > 0 && src[i-1] == '(' {
		word := wordBefore(src, skipSpaceBack(src, i-1))
		switch word {
		case "require":
			return core.ImportRequire, true
		case "import":
			return core.ImportDynamic, true
		}
		return "", false
	}

	switch wordBefore(src, i) {
	case "from", "import":
		return core.ImportStatic, true
	}
	return "", false
}

// skipSpaceBack returns the index just after the last non-space byte
// before end.
func skipSpaceBack(src string, end int) int {
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(src[:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return end
}

// wordBefore returns the identifier that ends at end.
func wordBefore(src string, end int) string {
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(src[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}
	// A member access such as obj.require is not the global.
	if start > 0 && src[start-1] == '.' {
		return ""
	}
	return src[start:end]
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lineColumn converts a byte offset to a 1-based line and rune column.
func lineColumn(src string, offset int) (int, int) {
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}
