package parser

import "strings"

// regexKeywords are the words after which a slash starts a regular
// expression rather than a division.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "instanceof": true, "new": true, "delete": true, "void": true,
	"throw": true, "yield": true, "await": true,
}

// literalStarts returns the offsets of the opening quote of every string and
// template literal that sits in code. Quotes inside comments, inside other
// literals and inside regular expressions are not reported.
//
// The scan is lexical only. A stray quote in JSX text ends at the line
// break, so it can hide at most the rest of that line.
func literalStarts(src string) map[int]bool {
	starts := make(map[int]bool)
	n := len(src)

	var (
		depth    int   // open braces since the innermost ${
		resume   []int // saved depth for each enclosing template
		prev     byte  // last significant code byte; 'a' for words
		lastWord string
	)

	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '/' && i+1 < n && src[i+1] == '/':
			if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				i = n
			}

		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return starts
			}
			i += 2 + end + 2

		case c == '/' && regexAllowed(prev, lastWord):
			i = skipRegex(src, i+1)
			prev = ')'

		case c == '\'' || c == '"':
			starts[i] = true
			i = skipQuoted(src, i)
			prev = c

		case c == '`':
			starts[i] = true
			var open bool
			if i, open = skipTemplate(src, i+1); open {
				resume = append(resume, depth)
				depth = 0
			}
			prev = c

		case c == '{':
			depth++
			prev = c
			i++

		case c == '}':
			if depth == 0 && len(resume) > 0 {
				depth = resume[len(resume)-1]
				resume = resume[:len(resume)-1]
				var open bool
				if i, open = skipTemplate(src, i+1); open {
					resume = append(resume, depth)
					depth = 0
				}
				prev = '`'
				continue
			}
			if depth > 0 {
				depth--
			}
			prev = c
			i++

		case isWordByte(c):
			start := i
			for i < n && isWordByte(src[i]) {
				i++
			}
			prev = 'a'
			lastWord = src[start:i]

		default:
			prev = c
			i++
		}
	}
	return starts
}

// regexAllowed reports whether a slash after prev starts a regular
// expression.
func regexAllowed(prev byte, lastWord string) bool {
	switch prev {
	case 0, '(', ',', '=', ':', '[', '!', '&', '|', '?', '{', '}', ';',
		'+', '-', '*', '%', '<', '>', '~', '^':
		return true
	case 'a':
		return regexKeywords[lastWord]
	}
	return false
}

// skipQuoted returns the offset just past the string literal opened at i.
// An unterminated literal ends at the line break.
func skipQuoted(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(src)
}

// skipTemplate scans template text starting at j. It returns the offset
// past the closing backtick, or past a ${ with open set.
func skipTemplate(src string, j int) (next int, open bool) {
	for ; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, false
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				return j + 2, true
			}
		}
	}
	return len(src), false
}

// skipRegex returns the offset past the regular expression body that
// starts at j. Flags are left for the word scanner.
func skipRegex(src string, j int) int {
	inClass := false
	for ; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j + 1
			}
		case '\n':
			return j
		}
	}
	return len(src)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
