package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gooze.dev/pkg/rulemig/internal/adapter"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
	"gooze.dev/pkg/rulemig/pkg"
)

// ErrStaleBase is returned for a change unit computed against text that is
// no longer the file's content.
var ErrStaleBase = errors.New("change unit base is stale")

// RejectedUnit is a change unit left out of a merge.
type RejectedUnit struct {
	Label  string
	Origin m.Path
	Reason error
}

// FileChange is the merge result of one file.
type FileChange struct {
	File m.Path
	// Base is the file content the edits apply to.
	Base     []byte
	Edits    []m.TextEdit
	Units    int
	Rejected []RejectedUnit
	// Origins are the files whose matches produced the accepted units.
	Origins []m.Path
	// Err is set when the file could not be read.
	Err error
}

// retiredImports are the legacy imports a migration may leave unused.
var retiredImports = []string{m.ExternalResource, m.RuleAnnotation, m.ClassRule}

// Result applies the accepted edits to Base. When several units were
// merged, each decided on imports from its own view of the file, so the
// import block is checked again on the merged text.
func (f FileChange) Result() ([]byte, error) {
	out, err := rewrite.Apply(f.Base, f.Edits)
	if err != nil || f.Units < 2 {
		return out, err
	}

	return rewrite.TidyImports(f.Base, out, retiredImports), nil
}

// Changed reports whether the merge accepted at least one edit.
func (f FileChange) Changed() bool {
	return f.Err == nil && len(f.Edits) > 0
}

// ChangeSet collects the change units of a run on disk and merges them per
// file once every match has been applied.
type ChangeSet struct {
	fs     adapter.SourceFSAdapter
	spill  pkg.FileSpill[m.ChangeUnit]
	logger *slog.Logger
}

// NewChangeSet creates a change set spilling into dir.
func NewChangeSet(fs adapter.SourceFSAdapter, dir string, logger *slog.Logger) (*ChangeSet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	spill, err := pkg.NewFileSpill[m.ChangeUnit](dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create change set: %w", err)
	}

	return &ChangeSet{fs: fs, spill: spill, logger: logger}, nil
}

// Enqueue appends units in order. Empty units are ignored.
func (c *ChangeSet) Enqueue(units ...m.ChangeUnit) error {
	batch := make([]m.ChangeUnit, 0, len(units))

	for _, unit := range units {
		if !unit.IsEmpty() {
			batch = append(batch, unit)
		}
	}

	if len(batch) == 0 {
		return nil
	}

	if err := c.spill.AppendBatch(batch); err != nil {
		c.logger.Error("Failed to enqueue change units", "units", len(batch), "error", err)
		return fmt.Errorf("failed to enqueue change units: %w", err)
	}

	return nil
}

// Len returns the number of enqueued units.
func (c *ChangeSet) Len() int {
	return int(c.spill.Len())
}

// Merge groups the enqueued units by file, in the order files were first
// seen. Within a file, units are merged in enqueue order: an edit identical
// to an accepted one is dropped, and a unit that overlaps a different
// accepted edit or was computed against stale text is rejected as a whole.
func (c *ChangeSet) Merge() ([]FileChange, error) {
	var order []m.Path

	files := make(map[m.Path]*FileChange)

	err := c.spill.Range(func(_ uint64, unit m.ChangeUnit) error {
		change, ok := files[unit.File]
		if !ok {
			change = c.open(unit.File)
			files[unit.File] = change
			order = append(order, unit.File)
		}

		if change.Err != nil {
			change.Rejected = append(change.Rejected, RejectedUnit{Label: unit.Label, Origin: unit.Origin, Reason: change.Err})
			return nil
		}

		if reason := mergeUnit(change, unit); reason != nil {
			c.logger.Warn("Rejected change unit", "file", unit.File, "label", unit.Label, "error", reason)
			change.Rejected = append(change.Rejected, RejectedUnit{Label: unit.Label, Origin: unit.Origin, Reason: reason})
		}

		return nil
	})
	if err != nil {
		c.logger.Error("Failed to read change units", "path", c.spill.Path(), "error", err)
		return nil, fmt.Errorf("failed to read change units: %w", err)
	}

	out := make([]FileChange, 0, len(order))
	for _, path := range order {
		change := files[path]
		change.Edits = rewrite.SortEdits(change.Edits)
		out = append(out, *change)
	}

	return out, nil
}

// Close deletes the spill.
func (c *ChangeSet) Close() error {
	return c.spill.Remove()
}

func (c *ChangeSet) open(path m.Path) *FileChange {
	base, err := c.fs.ReadFile(path)
	if err != nil {
		c.logger.Error("Failed to read file for merge", "path", path, "error", err)
		return &FileChange{File: path, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	return &FileChange{File: path, Base: base}
}

func mergeUnit(change *FileChange, unit m.ChangeUnit) error {
	if unit.BaseHash != adapter.Fingerprint(change.Base) {
		return ErrStaleBase
	}

	var fresh []m.TextEdit

	widen := make(map[int]string)

	for _, edit := range unit.Edits {
		duplicate := false

		for i, accepted := range change.Edits {
			if accepted == edit || coversInsert(accepted, edit) {
				duplicate = true
				break
			}

			if coversInsert(edit, accepted) {
				widen[i] = edit.NewText
				duplicate = true

				break
			}

			if accepted.Overlaps(edit) {
				return fmt.Errorf("%w: [%d,%d) against [%d,%d)",
					rewrite.ErrOverlappingEdit, edit.Start, edit.End, accepted.Start, accepted.End)
			}
		}

		if !duplicate {
			fresh = append(fresh, edit)
		}
	}

	for i, text := range widen {
		change.Edits[i].NewText = text
	}

	change.Edits = append(change.Edits, fresh...)
	change.Units++

	if unit.Origin != "" && !slices.Contains(change.Origins, unit.Origin) {
		change.Origins = append(change.Origins, unit.Origin)
	}

	return nil
}

// coversInsert reports whether a and b insert at the same offset and a's
// text already contains b's, as happens when two invocations add imports to
// the same file.
func coversInsert(a, b m.TextEdit) bool {
	return a.IsInsert() && b.IsInsert() && a.Start == b.Start && strings.Contains(a.NewText, b.NewText)
}

// RejectedDependencies returns, for each accepted unit origin of changes,
// the other files where a unit of the same origin was rejected. The
// accepted edits of such a file were computed together with edits that were
// not applied, so the migrated sources may not agree with each other.
func RejectedDependencies(changes []FileChange) map[m.Path][]string {
	rejected := make(map[m.Path][]m.Path)

	for _, change := range changes {
		for _, unit := range change.Rejected {
			if unit.Origin != "" && !slices.Contains(rejected[unit.Origin], change.File) {
				rejected[unit.Origin] = append(rejected[unit.Origin], change.File)
			}
		}
	}

	warnings := make(map[m.Path][]string)

	for _, change := range changes {
		for _, origin := range change.Origins {
			for _, target := range rejected[origin] {
				if target == change.File {
					continue
				}

				warnings[change.File] = append(warnings[change.File],
					fmt.Sprintf("edits from %s depend on a rejected change to %s", origin, target))
			}
		}
	}

	return warnings
}
