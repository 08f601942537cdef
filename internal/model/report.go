package model

import "time"

// FileStatus is the outcome of a run for one file.
type FileStatus string

const (
	// StatusChanged means the file has accepted edits.
	StatusChanged FileStatus = "changed"
	// StatusUnchanged means no match produced an edit for the file.
	StatusUnchanged FileStatus = "unchanged"
	// StatusRejected means at least one change unit could not be merged.
	StatusRejected FileStatus = "rejected"
	// StatusFailed means the file could not be read, parsed or written.
	StatusFailed FileStatus = "failed"
)

// FileReport summarizes the run for a single file.
type FileReport struct {
	File     Path       `yaml:"file"`
	Status   FileStatus `yaml:"status"`
	Matches  int        `yaml:"matches"`
	Units    int        `yaml:"units"`
	Edits    int        `yaml:"edits"`
	Rejected int        `yaml:"rejected,omitempty"`
	Error    string     `yaml:"error,omitempty"`
	Warnings []string   `yaml:"warnings,omitempty"`
	Diff     string     `yaml:"-"`
}

// RunReport is the persisted outcome of one migrate run.
type RunReport struct {
	ID        string       `yaml:"id"`
	StartedAt time.Time    `yaml:"started_at"`
	Write     bool         `yaml:"write"`
	Files     []FileReport `yaml:"files"`
}

// Changed counts files with accepted edits.
func (r RunReport) Changed() int {
	count := 0

	for _, file := range r.Files {
		if file.Status == StatusChanged {
			count++
		}
	}

	return count
}
