package domain

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// ChangeSetAggregator owns the rewrite sessions of one invocation: the
// primary session of the triggering file and one lazily opened secondary
// session per other file touched.
type ChangeSetAggregator struct {
	fs      adapter.SourceFSAdapter
	primary *rewrite.Session
	logger  *slog.Logger

	secondary map[m.Path]*rewrite.Session
	order     []m.Path
}

// NewChangeSetAggregator creates an aggregator around primary.
func NewChangeSetAggregator(fs adapter.SourceFSAdapter, primary *rewrite.Session, logger *slog.Logger) *ChangeSetAggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChangeSetAggregator{
		fs:        fs,
		primary:   primary,
		logger:    logger,
		secondary: make(map[m.Path]*rewrite.Session),
	}
}

// Session returns the session editing unit's file, opening a secondary
// session on first use.
func (a *ChangeSetAggregator) Session(unit *javaast.CompilationUnit) *rewrite.Session {
	path := m.Path(unit.Path)
	if path == a.primary.File() {
		return a.primary
	}

	if session, ok := a.secondary[path]; ok {
		return session
	}

	session := rewrite.NewSession(unit)
	a.secondary[path] = session
	a.order = append(a.order, path)

	return session
}

// Flush materializes every secondary session into a change unit. A file
// whose text cannot be read, no longer matches the parsed text, or whose
// edits do not render is logged and left out; the other files still flush.
func (a *ChangeSetAggregator) Flush() []m.ChangeUnit {
	var units []m.ChangeUnit

	for _, path := range a.order {
		session := a.secondary[path]

		current, err := a.fs.ReadFile(path)
		if err != nil {
			a.logger.Error("Failed to read file for change unit", "path", path, "error", err)
			continue
		}

		if adapter.Fingerprint(current) != adapter.Fingerprint(session.Unit().Source) {
			a.logger.Error("Failed to create change unit", "path", path, "error", ErrStaleBase)
			continue
		}

		unit, err := NewChangeUnit(session, false)
		if err != nil {
			a.logger.Error("Failed to create change unit", "path", path, "error", err)
			continue
		}

		if unit.IsEmpty() {
			continue
		}

		units = append(units, unit)
	}

	return units
}

// NewChangeUnit renders session into a change unit against the text the
// session was opened on.
func NewChangeUnit(session *rewrite.Session, primary bool) (m.ChangeUnit, error) {
	edits, err := session.Edits()
	if err != nil {
		return m.ChangeUnit{}, fmt.Errorf("failed to render edits: %w", err)
	}

	return m.ChangeUnit{
		File:     session.File(),
		Label:    ChangeLabel(session.File()),
		Primary:  primary,
		BaseHash: adapter.Fingerprint(session.Unit().Source),
		Edits:    edits,
	}, nil
}

// ChangeLabel is the label given to the change unit of path.
func ChangeLabel(path m.Path) string {
	return "Migrate ExternalResource in " + filepath.Base(string(path))
}
