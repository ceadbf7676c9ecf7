package core

// ImportKind classifies how a module references another.
type ImportKind string

// Import kinds.
const (
	// ImportStatic covers `import ... from`, `export ... from` and side-effect imports.
	ImportStatic ImportKind = "static"
	// ImportRequire covers CommonJS `require()` calls.
	ImportRequire ImportKind = "require"
	// ImportDynamic covers `import()` expressions.
	ImportDynamic ImportKind = "dynamic"
)

// Import is a single import record found in a module.
type Import struct {
	// Specifier is the module string as written in source, e.g. "./b".
	Specifier string `json:"specifier"`

	// Kind is how the import was expressed.
	Kind ImportKind `json:"kind"`

	// Pos is where the specifier literal starts in the importing file.
	Pos Position `json:"pos"`

	// Resolved is the project-relative path of the imported module.
	// Empty when the specifier is external or could not be resolved.
	Resolved string `json:"resolved,omitempty"`

	// External is true for package imports and node builtins.
	External bool `json:"external,omitempty"`
}
