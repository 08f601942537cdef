package domain

import (
	"maps"
	"sort"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// Finder is the find stage: it lists the declarations of a compilation unit
// the migration applies to. It never edits anything.
type Finder struct {
	model   adapter.SourceModel
	facts   *SyntaxFacts
	covered map[string]bool
}

// NewFinder constructs a Finder resolving types through model.
func NewFinder(model adapter.SourceModel) *Finder {
	return &Finder{model: model, facts: NewSyntaxFacts(model), covered: make(map[string]bool)}
}

// Cover records the hierarchies reached by the rule fields of unit. Classes
// in them are left to those fields by every later Find, whatever file they
// are declared in.
func (f *Finder) Cover(unit *javaast.CompilationUnit) {
	for _, decl := range unit.AllTypes() {
		for _, field := range decl.Fields {
			if match, ok := f.fieldMatch(unit, field); ok {
				f.cover(f.covered, match.Start)
			}
		}
	}
}

// Find returns the matches of unit ordered by source offset. Rule fields
// come first in the walk; a class that one of them already reaches through
// its hierarchy is not reported again.
func (f *Finder) Find(unit *javaast.CompilationUnit) []m.Match {
	var matches []m.Match

	covered := make(map[string]bool, len(f.covered))
	maps.Copy(covered, f.covered)

	for _, decl := range unit.AllTypes() {
		for _, field := range decl.Fields {
			match, ok := f.fieldMatch(unit, field)
			if !ok {
				continue
			}

			matches = append(matches, match)
			f.cover(covered, match.Start)
		}
	}

	for _, decl := range unit.AllTypes() {
		if match, ok := f.classMatch(unit, decl, covered); ok {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matchOffset(matches[i]) < matchOffset(matches[j])
	})

	return matches
}

func (f *Finder) fieldMatch(unit *javaast.CompilationUnit, field *javaast.FieldDecl) (m.Match, bool) {
	classScoped := HasMarker(unit, field.Modifiers, m.ClassRule)
	if !classScoped && !HasMarker(unit, field.Modifiers, m.RuleAnnotation) {
		return m.Match{}, false
	}

	start, ok := f.startBinding(unit, field)
	if !ok || IsExcludedRuleType(start.QualifiedName) || !f.facts.IsLegacyResource(start) {
		return m.Match{}, false
	}

	shape := m.ShapeNamedField

	switch {
	case field.Creation != nil && field.Creation.Body != nil:
		shape = m.ShapeAnonymousField
	case classScoped:
		shape = m.ShapeClassField
	}

	return m.Match{
		File:        m.Path(unit.Path),
		Shape:       shape,
		ClassScoped: classScoped,
		Name:        field.Name,
		Line:        unit.Line(field.Span.Start),
		Field:       field,
		Start:       start,
	}, true
}

// startBinding resolves the type a rule field's hierarchy walk starts from:
// the instantiated type when the initializer is "new X(...)", the declared
// type otherwise.
func (f *Finder) startBinding(unit *javaast.CompilationUnit, field *javaast.FieldDecl) (m.TypeBinding, bool) {
	if c := field.Creation; c != nil && c.Type != nil {
		if b, ok := f.model.ResolveType(unit, field.Owner, c.Type); ok {
			return b, true
		}
	}

	if field.Type == nil {
		return m.TypeBinding{}, false
	}

	return f.model.ResolveType(unit, field.Owner, field.Type)
}

func (f *Finder) classMatch(unit *javaast.CompilationUnit, decl *javaast.TypeDecl, covered map[string]bool) (m.Match, bool) {
	if !decl.IsClass() || decl.Superclass == nil {
		return m.Match{}, false
	}

	self, ok := f.facts.SelfBinding(unit, decl)
	if !ok || covered[self.QualifiedName] || IsExcludedRuleType(self.QualifiedName) {
		return m.Match{}, false
	}

	if !f.facts.IsLegacyResource(self) {
		return m.Match{}, false
	}

	declaresHook := len(decl.MethodsNamed(m.HookBefore)) > 0 || len(decl.MethodsNamed(m.HookAfter)) > 0
	if !declaresHook && !f.facts.DirectlyExtendsBase(unit, decl) {
		return m.Match{}, false
	}

	return m.Match{
		File:  m.Path(unit.Path),
		Shape: m.ShapeClass,
		Name:  decl.Name,
		Line:  unit.Line(decl.Span.Start),
		Type:  decl,
		Start: self,
	}, true
}

func (f *Finder) cover(covered map[string]bool, b m.TypeBinding) {
	for !b.IsZero() && !covered[b.QualifiedName] {
		covered[b.QualifiedName] = true

		next, ok := f.model.ResolveSuperclass(b)
		if !ok {
			return
		}

		b = next
	}
}
