package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/controller"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// ListArgs holds the arguments of the find-only pass.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Jobs    int
}

// RunArgs holds the arguments of a migration run.
type RunArgs struct {
	Paths   []m.Path
	Exclude []string
	Jobs    int
	// Write applies the merged edits to disk instead of printing diffs.
	Write bool
	// Report is where the run report is saved, empty for none.
	Report m.Path
	// SpillDir holds the change set spill, empty for the temp directory.
	SpillDir  string
	Collision CollisionPolicy
	Color     bool
}

// ViewArgs holds the arguments for showing a saved run report.
type ViewArgs struct {
	Report m.Path
	Color  bool
}

// Workflow drives a batch pass over a Java project.
type Workflow interface {
	List(ctx context.Context, args ListArgs) ([]m.Match, error)
	Run(ctx context.Context, args RunArgs) (m.RunReport, error)
	View(ctx context.Context, args ViewArgs) (m.RunReport, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.JavaFileAdapter
	adapter.ReportStore
	controller.UI

	logger *slog.Logger
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	javaAdapter adapter.JavaFileAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	logger *slog.Logger,
) Workflow {
	if logger == nil {
		logger = slog.Default()
	}

	return &workflow{
		SourceFSAdapter: fsAdapter,
		JavaFileAdapter: javaAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		logger:          logger,
	}
}

// View loads a saved run report and displays its summary.
func (w *workflow) View(ctx context.Context, args ViewArgs) (m.RunReport, error) {
	if err := w.Start(ctx, controller.WithMigrateMode(), controller.WithColor(args.Color)); err != nil {
		return m.RunReport{}, fmt.Errorf("failed to start UI: %w", err)
	}
	defer w.Close(ctx)

	report, err := w.LoadReport(args.Report)
	if err != nil {
		w.logger.Error("Failed to load report", "path", args.Report, "error", err)
		return m.RunReport{}, fmt.Errorf("failed to load report %s: %w", args.Report, err)
	}

	w.DisplaySummary(ctx, report)

	return report, nil
}

// List runs the find stage over every file and displays the matches.
func (w *workflow) List(ctx context.Context, args ListArgs) ([]m.Match, error) {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		w.logger.Error("Failed to start workflow UI", "error", err)
		return nil, err
	}
	defer w.Close(ctx)

	files, index, err := w.index(ctx, args.Paths, args.Exclude, args.Jobs)
	if err != nil {
		_ = w.DisplayMatches(ctx, nil, err)
		return nil, err
	}

	finder, err := w.finder(ctx, index, files)
	if err != nil {
		return nil, err
	}

	var matches []m.Match

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit, _, err := w.Load(ctx, path)
		if err != nil {
			continue
		}

		matches = append(matches, finder.Find(unit)...)
	}

	if err := w.DisplayMatches(ctx, matches, nil); err != nil {
		w.logger.Error("Failed to display matches", "error", err)
		return nil, fmt.Errorf("display: %w", err)
	}

	return matches, nil
}

// Run finds and applies every match, merges the resulting change units per
// file, then either prints diffs or writes the files.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.RunReport, error) {
	report := m.RunReport{ID: uuid.NewString(), StartedAt: time.Now().UTC(), Write: args.Write}

	if err := w.Start(ctx, controller.WithMigrateMode(), controller.WithColor(args.Color)); err != nil {
		w.logger.Error("Failed to start workflow UI", "error", err)
		return report, err
	}
	defer w.Close(ctx)

	files, index, err := w.index(ctx, args.Paths, args.Exclude, args.Jobs)
	if err != nil {
		return report, err
	}

	changes, err := NewChangeSet(w.SourceFSAdapter, args.SpillDir, w.logger)
	if err != nil {
		w.logger.Error("Failed to create change set", "error", err)
		return report, err
	}

	defer func() {
		if err := changes.Close(); err != nil {
			w.logger.Error("Failed to remove change set spill", "error", err)
		}
	}()

	finder, err := w.finder(ctx, index, files)
	if err != nil {
		return report, err
	}

	results := newFileResults()
	orchestrator := NewOrchestrator(index, w.SourceFSAdapter,
		WithLogger(w.logger), WithCollisionPolicy(args.Collision))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := results.get(path)

		units, err := w.migrateFile(ctx, finder, orchestrator, path, result)
		if err != nil {
			result.Status = m.StatusFailed
			result.Error = err.Error()

			continue
		}

		if err := changes.Enqueue(units...); err != nil {
			return report, err
		}
	}

	w.logger.Debug("Merging change units", "units", changes.Len())

	merged, err := changes.Merge()
	if err != nil {
		return report, err
	}

	warnings := RejectedDependencies(merged)

	for _, change := range merged {
		result := results.get(change.File)
		w.applyChange(ctx, change, args.Write, result)

		for _, warning := range warnings[change.File] {
			w.logger.Warn("Migrated file depends on a rejected change", "file", change.File, "warning", warning)
			result.Warnings = append(result.Warnings, warning)
		}
	}

	report.Files = results.list()
	w.DisplaySummary(ctx, report)

	if args.Report != "" {
		if err := w.SaveReport(args.Report, report); err != nil {
			w.logger.Error("Failed to save run report", "path", args.Report, "error", err)
			return report, fmt.Errorf("failed to save report: %w", err)
		}
	}

	return report, nil
}

func (w *workflow) index(ctx context.Context, paths []m.Path, exclude []string, jobs int) ([]m.Path, *adapter.ProjectIndex, error) {
	files, err := w.JavaFiles(ctx, paths, exclude)
	if err != nil {
		w.logger.Error("Failed to list java files", "paths", paths, "error", err)
		return nil, nil, fmt.Errorf("failed to list java files: %w", err)
	}

	if jobs < 1 {
		jobs = 1
	}

	w.DisplayIndexInfo(ctx, len(files), jobs)

	index := adapter.NewProjectIndex(w.JavaFileAdapter)
	if err := index.Build(ctx, files, jobs); err != nil {
		return nil, nil, err
	}

	return files, index, nil
}

// finder prepares the find stage with the rule field hierarchies of the
// whole project, so a class reached from a rule field in another file is
// migrated with that field's scope only.
func (w *workflow) finder(ctx context.Context, index *adapter.ProjectIndex, files []m.Path) (*Finder, error) {
	finder := NewFinder(index)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit, _, err := w.Load(ctx, path)
		if err != nil {
			continue
		}

		finder.Cover(unit)
	}

	return finder, nil
}

// migrateFile applies every match of one file against a single primary
// session and returns the primary unit followed by the secondary ones.
func (w *workflow) migrateFile(
	ctx context.Context,
	finder *Finder,
	orchestrator Orchestrator,
	path m.Path,
	result *m.FileReport,
) ([]m.ChangeUnit, error) {
	unit, _, err := w.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	matches := finder.Find(unit)
	result.Matches = len(matches)

	if len(matches) == 0 {
		return nil, nil
	}

	primary := rewrite.NewSession(unit)

	var secondary []m.ChangeUnit

	for _, match := range matches {
		units, err := orchestrator.Apply(ctx, primary, match)

		switch {
		case errors.Is(err, ErrUnresolvedBinding):
			w.logger.Debug("Skipping match with unresolved binding", "file", path, "match", match.Name)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case err != nil:
			w.logger.Error("Failed to apply match", "file", path, "match", match.Name, "error", err)
		}

		secondary = append(secondary, units...)
	}

	own, err := NewChangeUnit(primary, true)
	if err != nil {
		w.logger.Error("Failed to render primary change unit", "file", path, "error", err)
		return nil, err
	}

	units := append([]m.ChangeUnit{own}, secondary...)
	for i := range units {
		units[i].Origin = path
	}

	return units, nil
}

func (w *workflow) applyChange(ctx context.Context, change FileChange, write bool, result *m.FileReport) {
	result.Units += change.Units
	result.Rejected += len(change.Rejected)
	result.Edits = len(change.Edits)

	if change.Err != nil {
		result.Status = m.StatusFailed
		result.Error = change.Err.Error()

		return
	}

	if !change.Changed() {
		if len(change.Rejected) > 0 {
			result.Status = m.StatusRejected
		}

		return
	}

	out, err := change.Result()
	if err != nil {
		w.logger.Error("Failed to apply merged edits", "file", change.File, "error", err)
		result.Status = m.StatusFailed
		result.Error = err.Error()

		return
	}

	result.Status = m.StatusChanged
	if len(change.Rejected) > 0 {
		result.Status = m.StatusRejected
	}

	result.Diff = UnifiedDiff(change.File, change.Base, out)

	if !write {
		w.DisplayDiff(ctx, change.File, result.Diff)
		return
	}

	perm := os.FileMode(0o644)
	if info, err := w.FileInfo(change.File); err == nil {
		perm = info.Mode().Perm()
	}

	if err := w.WriteFile(change.File, out, perm); err != nil {
		w.logger.Error("Failed to write migrated file", "file", change.File, "error", err)
		result.Status = m.StatusFailed
		result.Error = err.Error()
	}
}

// UnifiedDiff renders the change of one file as a unified diff.
func UnifiedDiff(path m.Path, before, after []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + string(path),
		ToFile:   "b/" + string(path),
		Context:  3,
	})
	if err != nil {
		return ""
	}

	return diff
}

// fileResults keeps one report entry per file in first-seen order.
type fileResults struct {
	order []m.Path
	byKey map[m.Path]*m.FileReport
}

func newFileResults() *fileResults {
	return &fileResults{byKey: make(map[m.Path]*m.FileReport)}
}

func (r *fileResults) get(path m.Path) *m.FileReport {
	if result, ok := r.byKey[path]; ok {
		return result
	}

	result := &m.FileReport{File: path, Status: m.StatusUnchanged}
	r.byKey[path] = result
	r.order = append(r.order, path)

	return result
}

func (r *fileResults) list() []m.FileReport {
	out := make([]m.FileReport, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, *r.byKey[path])
	}

	return out
}
