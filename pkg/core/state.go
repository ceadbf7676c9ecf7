package core

import "time"

// Store defines the interface for persisted state: the import cache and the
// history of lint runs.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Import cache operations, keyed by project-relative file path.
	// A cached entry is only returned when its content hash matches.
	GetImports(filePath, contentHash string) ([]Import, bool, error)
	PutImports(filePath, contentHash string, imports []Import) error
	PruneImports(keep []string) (int, error)

	// Run operations
	CreateRun(root string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, stats RunStats, errMsg string) error
	ListRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a lint run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunStats summarizes the outcome of a lint run.
type RunStats struct {
	Files    int `json:"files"`
	Cycles   int `json:"cycles"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Run is one invocation of the linter.
type Run struct {
	ID          string     `json:"id"`
	Root        string     `json:"root"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
