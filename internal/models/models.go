// Package models defines the data objects shared across lazycommit packages.
package models

import "time"

// ChangeEntry represents one changed path reported by git status.
type ChangeEntry struct {
	Path    string
	Status  string // two-character XY code (e.g., " M", "A ", "??", "R ")
	OldPath string // for renames: the original path
}

// IsUntracked reports whether the entry is not yet tracked by git.
func (c ChangeEntry) IsUntracked() bool {
	return c.Status == "??"
}

// IsDeleted reports whether either side of the status marks a deletion.
func (c ChangeEntry) IsDeleted() bool {
	if len(c.Status) != 2 {
		return false
	}
	return c.Status[0] == 'D' || c.Status[1] == 'D'
}

// Group names a set of paths that should be committed together.
type Group struct {
	Name  string
	Files []string
}

// PipelineMessage is a generated commit message, before and after human edit.
// Subject and body are independent fields, never conflated.
type PipelineMessage struct {
	Subject string
	Body    string
}

// CachedMessage is the on-disk record for one payload fingerprint.
type CachedMessage struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CommitOptions carries the session-scoped settings for one invocation.
// Read-only once the pipeline starts.
type CommitOptions struct {
	Mode         string // "single", "manual" or "ai"
	Model        string
	BaseURL      string
	Language     string
	Scope        string // explicit scope override; bypasses the cache
	MaxDiffChars int
	DryRun       bool
	Auto         bool
	Batch        bool
	Hunks        bool
	Amend        bool
}

// RetryPolicy bounds the remote generation calls.
type RetryPolicy struct {
	MaxRetries int      `json:"maxRetries"`
	BaseDelay  Duration `json:"baseDelay"`
	MaxDelay   Duration `json:"maxDelay"`
	Timeout    Duration `json:"timeout"`
}

const (
	// MetadataDirname is the tool's namespace under the repository's git dir,
	// kept separate so unrelated tooling never collides with our files.
	MetadataDirname = "lazycommit"
	// CacheDirname holds one JSON file per payload fingerprint.
	CacheDirname = "cache"
	// RepoHintsFilename is the optional per-repository hints file.
	RepoHintsFilename = ".lazycommit.yaml"
)

// Commit pipeline modes accepted by the --mode flag.
const (
	ModeSingle = "single" // whole changeset as one group
	ModeManual = "manual" // user picks the files
	ModeAI     = "ai"     // generation service proposes groups
)
