package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// ErrDeclarationNotFound is returned when a qualified name has no source
// declaration in the indexed project.
var ErrDeclarationNotFound = errors.New("declaration not found")

// SourceModel is the project-wide view the migration engine resolves types
// against.
type SourceModel interface {
	// Parse loads and parses one file.
	Parse(ctx context.Context, path m.Path) (*javaast.CompilationUnit, error)

	// ResolveType resolves ref as seen from inside from (which may be nil
	// for references at compilation unit level).
	ResolveType(unit *javaast.CompilationUnit, from *javaast.TypeDecl, ref *javaast.TypeRef) (m.TypeBinding, bool)

	// ResolveSuperclass returns the binding of b's direct superclass.
	ResolveSuperclass(b m.TypeBinding) (m.TypeBinding, bool)

	// FindDeclaration re-parses the file declaring qualifiedName and returns
	// the unit together with the declaration.
	FindDeclaration(ctx context.Context, qualifiedName string) (*javaast.CompilationUnit, *javaast.TypeDecl, error)
}

// knownTypes lists library types the project does not contain the source
// of, mapped to their superclass.
var knownTypes = map[string]string{
	m.ExternalResource:               "",
	m.TemporaryFolder:                m.ExternalResource,
	m.TestNameRule:                   "org.junit.rules.TestWatcher",
	"org.junit.rules.TestWatcher":    "",
	"org.junit.rules.ErrorCollector": "org.junit.rules.Verifier",
	"org.junit.rules.Verifier":       "",
}

// scope is the name-resolution context of a type declaration.
type scope struct {
	pkg       string
	imports   []*javaast.Import
	enclosing []string // innermost first, the declaration itself included
}

type indexedType struct {
	file       m.Path
	superRef   string
	scope      scope
	superOnce  sync.Once
	superclass string
}

// ProjectIndex maps every type declared in the project to its file and
// unresolved superclass reference. It implements SourceModel.
type ProjectIndex struct {
	java JavaFileAdapter

	mu    sync.RWMutex
	types map[string]*indexedType
}

// NewProjectIndex constructs an empty index.
func NewProjectIndex(java JavaFileAdapter) *ProjectIndex {
	return &ProjectIndex{java: java, types: make(map[string]*indexedType)}
}

// Build parses files concurrently, at most jobs at a time, and records
// their type declarations. Files that fail to load are logged and skipped.
func (p *ProjectIndex) Build(ctx context.Context, files []m.Path, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for _, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			unit, _, err := p.java.Load(groupCtx, file)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}

				slog.Warn("Skipping file during indexing", "path", file, "error", err)

				return nil
			}

			p.Add(unit)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("Failed to build project index", "error", err)
		return fmt.Errorf("failed to build project index: %w", err)
	}

	slog.Debug("Project index built", "files", len(files), "types", p.Len())

	return nil
}

// Add records the declarations of an already parsed unit.
func (p *ProjectIndex) Add(unit *javaast.CompilationUnit) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, decl := range unit.AllTypes() {
		entry := &indexedType{file: m.Path(unit.Path), scope: scopeOf(unit, decl)}
		if decl.Superclass != nil {
			entry.superRef = decl.Superclass.Name
		}

		p.types[decl.QualifiedName()] = entry
	}
}

// Len returns the number of indexed types.
func (p *ProjectIndex) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.types)
}

// Parse implements SourceModel.
func (p *ProjectIndex) Parse(ctx context.Context, path m.Path) (*javaast.CompilationUnit, error) {
	unit, _, err := p.java.Load(ctx, path)

	return unit, err
}

// ResolveType implements SourceModel.
func (p *ProjectIndex) ResolveType(unit *javaast.CompilationUnit, from *javaast.TypeDecl, ref *javaast.TypeRef) (m.TypeBinding, bool) {
	if ref == nil {
		return m.TypeBinding{}, false
	}

	sc := scope{pkg: unit.Package, imports: unit.Imports}
	if from != nil {
		sc = scopeOf(unit, from)
	}

	qualified, ok := p.resolveName(sc, ref.Name)
	if !ok {
		return m.TypeBinding{}, false
	}

	return p.binding(qualified), true
}

// ResolveSuperclass implements SourceModel.
func (p *ProjectIndex) ResolveSuperclass(b m.TypeBinding) (m.TypeBinding, bool) {
	if b.Superclass == "" {
		return m.TypeBinding{}, false
	}

	return p.binding(b.Superclass), true
}

// FindDeclaration implements SourceModel.
func (p *ProjectIndex) FindDeclaration(ctx context.Context, qualifiedName string) (*javaast.CompilationUnit, *javaast.TypeDecl, error) {
	name := strings.ReplaceAll(qualifiedName, "$", ".")

	entry := p.lookup(name)
	if entry == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeclarationNotFound, qualifiedName)
	}

	unit, err := p.Parse(ctx, entry.file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load declaration %s: %w", qualifiedName, err)
	}

	decl := unit.FindType(name)
	if decl == nil {
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrDeclarationNotFound, qualifiedName, entry.file)
	}

	return unit, decl, nil
}

func (p *ProjectIndex) lookup(qualifiedName string) *indexedType {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.types[qualifiedName]
}

func (p *ProjectIndex) known(qualifiedName string) bool {
	if p.lookup(qualifiedName) != nil {
		return true
	}

	_, ok := knownTypes[qualifiedName]

	return ok
}

func (p *ProjectIndex) binding(qualifiedName string) m.TypeBinding {
	if entry := p.lookup(qualifiedName); entry != nil {
		return m.TypeBinding{
			QualifiedName: qualifiedName,
			File:          entry.file,
			Superclass:    p.superclassOf(entry),
		}
	}

	return m.TypeBinding{QualifiedName: qualifiedName, Superclass: knownTypes[qualifiedName]}
}

func (p *ProjectIndex) superclassOf(entry *indexedType) string {
	entry.superOnce.Do(func() {
		if entry.superRef == "" {
			return
		}

		// The declaration itself is not in scope for its own extends clause.
		sc := entry.scope
		sc.enclosing = sc.enclosing[1:]

		if qualified, ok := p.resolveName(sc, entry.superRef); ok {
			entry.superclass = qualified
		}
	})

	return entry.superclass
}

// resolveName follows the Java lookup order: member types of enclosing
// declarations, single-type imports, the current package, then on-demand
// imports. Dotted names are resolved on their first segment.
func (p *ProjectIndex) resolveName(sc scope, name string) (string, bool) {
	first, rest, dotted := strings.Cut(name, ".")

	if resolved, ok := p.resolveSimple(sc, first); ok {
		if !dotted {
			return resolved, true
		}

		if candidate := resolved + "." + rest; p.known(candidate) {
			return candidate, true
		}
	}

	if dotted && p.known(name) {
		return name, true
	}

	if dotted {
		return name, strings.Contains(rest, ".") || p.lookup(name) != nil
	}

	return "", false
}

func (p *ProjectIndex) resolveSimple(sc scope, simple string) (string, bool) {
	for _, outer := range sc.enclosing {
		if candidate := outer + "." + simple; p.lookup(candidate) != nil {
			return candidate, true
		}

		if strings.HasSuffix(outer, "."+simple) || outer == simple {
			return outer, true
		}
	}

	for _, imp := range sc.imports {
		if !imp.Static && !imp.OnDemand && imp.SimpleName() == simple {
			return imp.Name, true
		}
	}

	if candidate := qualify(sc.pkg, simple); p.lookup(candidate) != nil {
		return candidate, true
	}

	for _, imp := range sc.imports {
		if imp.OnDemand && !imp.Static {
			if candidate := imp.Name + "." + simple; p.known(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

func scopeOf(unit *javaast.CompilationUnit, decl *javaast.TypeDecl) scope {
	sc := scope{pkg: unit.Package, imports: unit.Imports}
	for t := decl; t != nil; t = t.Outer {
		sc.enclosing = append(sc.enclosing, t.QualifiedName())
	}

	return sc
}

func qualify(pkg, simple string) string {
	if pkg == "" {
		return simple
	}

	return pkg + "." + simple
}
