package output

// LintOutput is the JSON form of a lint run.
type LintOutput struct {
	Summary LintSummary      `json:"summary"`
	Files   []LintFileResult `json:"files"`
	Errors  []ParseFailure   `json:"parse_errors,omitempty"`
}

// LintSummary counts diagnostics.
type LintSummary struct {
	FilesAnalyzed   int `json:"files_analyzed"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
}

// LintFileResult groups the diagnostics of one file.
type LintFileResult struct {
	Path        string           `json:"path"`
	Diagnostics []LintDiagnostic `json:"diagnostics"`
}

// LintDiagnostic is one finding.
type LintDiagnostic struct {
	RuleID   string         `json:"rule_id"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Line     int            `json:"line"`
	Column   int            `json:"column"`
	DocURL   string         `json:"doc_url,omitempty"`
	Related  []RelatedEntry `json:"related,omitempty"`
}

// RelatedEntry is a secondary location of a diagnostic.
type RelatedEntry struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// ParseFailure is a file that could not be analysed.
type ParseFailure struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// GraphOutput is the JSON form of the graph command.
type GraphOutput struct {
	Stats  GraphStats   `json:"stats"`
	Cycles []GraphCycle `json:"cycles"`
	// Order lists modules so each follows the modules it imports. It is
	// only set when requested and the graph is acyclic.
	Order []string `json:"order,omitempty"`
}

// GraphStats describes the module graph.
type GraphStats struct {
	Modules    int  `json:"modules"`
	Edges      int  `json:"edges"`
	Imports    int  `json:"imports"`
	External   int  `json:"external"`
	Unresolved int  `json:"unresolved"`
	Components int  `json:"components"`
	Cycles     int  `json:"cycles"`
	Roots      int  `json:"roots"`
	Leaves     int  `json:"leaves"`
	Acyclic    bool `json:"acyclic"`
}

// GraphCycle is one strongly connected component with a cycle.
type GraphCycle struct {
	Modules []string `json:"modules"`
	Path    []string `json:"path"`
}

// RunInfo is the JSON form of a recorded lint run.
type RunInfo struct {
	ID         string `json:"id"`
	Root       string `json:"root"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
	Files      int    `json:"files"`
	Cycles     int    `json:"cycles"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
	Error      string `json:"error,omitempty"`
}
