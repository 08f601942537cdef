package domain

import (
	"context"
	"log/slog"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// HierarchyEntry is one level of a resource hierarchy. Decl and Unit are nil
// when the declaration could not be located; such a level is skipped.
type HierarchyEntry struct {
	Binding m.TypeBinding
	Decl    *javaast.TypeDecl
	Unit    *javaast.CompilationUnit
	// Parent is the entry of the direct superclass, nil for the level that
	// extends the resource base.
	Parent *HierarchyEntry
}

// Resolved reports whether the entry carries a declaration.
func (e *HierarchyEntry) Resolved() bool {
	return e.Decl != nil
}

// DirectlyExtendsBase reports whether the entry's superclass is the base.
func (e *HierarchyEntry) DirectlyExtendsBase() bool {
	return e.Binding.Superclass == m.ExternalResource
}

// HierarchyWalker enumerates the declarations between a type and the
// resource base. A walker memoizes lookups and must not outlive one
// invocation.
type HierarchyWalker struct {
	model   adapter.SourceModel
	primary *javaast.CompilationUnit
	logger  *slog.Logger

	units map[m.Path]*javaast.CompilationUnit
	decls map[string]located
}

type located struct {
	unit *javaast.CompilationUnit
	decl *javaast.TypeDecl
}

// NewHierarchyWalker creates a walker for one invocation triggered in primary.
func NewHierarchyWalker(model adapter.SourceModel, primary *javaast.CompilationUnit, logger *slog.Logger) *HierarchyWalker {
	if logger == nil {
		logger = slog.Default()
	}

	return &HierarchyWalker{
		model:   model,
		primary: primary,
		logger:  logger,
		units:   map[m.Path]*javaast.CompilationUnit{m.Path(primary.Path): primary},
		decls:   make(map[string]located),
	}
}

// Walk climbs from start towards the resource base and returns one entry per
// level, start first. The base itself is never part of the result.
func (w *HierarchyWalker) Walk(ctx context.Context, start m.TypeBinding) []*HierarchyEntry {
	var (
		entries []*HierarchyEntry
		prev    *HierarchyEntry
	)

	seen := make(map[string]bool)

	for b := start; !b.IsZero() && b.QualifiedName != m.ExternalResource; {
		if seen[b.QualifiedName] {
			w.logger.Warn("Cyclic resource hierarchy", "type", b.QualifiedName)
			break
		}

		seen[b.QualifiedName] = true

		entry := &HierarchyEntry{Binding: b}
		if loc, ok := w.locate(ctx, b); ok {
			entry.Unit, entry.Decl = loc.unit, loc.decl
		}

		if prev != nil {
			prev.Parent = entry
		}

		entries = append(entries, entry)
		prev = entry

		next, ok := w.model.ResolveSuperclass(b)
		if !ok {
			break
		}

		b = next
	}

	return entries
}

func (w *HierarchyWalker) locate(ctx context.Context, b m.TypeBinding) (located, bool) {
	if loc, ok := w.decls[b.QualifiedName]; ok {
		return loc, loc.decl != nil
	}

	loc := w.lookup(ctx, b)
	w.decls[b.QualifiedName] = loc

	return loc, loc.decl != nil
}

func (w *HierarchyWalker) lookup(ctx context.Context, b m.TypeBinding) located {
	if b.File == "" {
		w.logger.Debug("Type is outside the project", "type", b.QualifiedName)
		return located{}
	}

	if unit, ok := w.units[b.File]; ok {
		if decl := unit.FindType(b.QualifiedName); decl != nil {
			return located{unit: unit, decl: decl}
		}
	}

	unit, decl, err := w.model.FindDeclaration(ctx, b.QualifiedName)
	if err != nil {
		w.logger.Warn("Failed to locate declaration", "type", b.QualifiedName, "file", b.File, "error", err)
		return located{}
	}

	if _, ok := w.units[b.File]; !ok {
		w.units[b.File] = unit
	}

	return located{unit: unit, decl: decl}
}
