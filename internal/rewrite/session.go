package rewrite

import (
	"fmt"
	"sort"
	"strconv"

	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

type listKey struct {
	kind ListKind
	at   int
}

// Session is the edit session of one compilation unit. It offers tree
// style primitives over the unit's spans, staged list rewrites and import
// bookkeeping. A session cannot roll back.
type Session struct {
	unit    *javaast.CompilationUnit
	buf     *Buffer
	lists   map[listKey]*ListRewrite
	imports *ImportRewrite
	marks   map[string]bool
	members map[int][]string
}

// NewSession opens a session over unit.
func NewSession(unit *javaast.CompilationUnit) *Session {
	return &Session{
		unit:    unit,
		buf:     NewBuffer(unit.Source),
		lists:   make(map[listKey]*ListRewrite),
		imports: newImportRewrite(unit),
		marks:   make(map[string]bool),
		members: make(map[int][]string),
	}
}

// Unit returns the compilation unit the session edits.
func (s *Session) Unit() *javaast.CompilationUnit {
	return s.unit
}

// File returns the path of the edited unit.
func (s *Session) File() m.Path {
	return m.Path(s.unit.Path)
}

// Replace replaces the text of span.
func (s *Session) Replace(span javaast.Span, text string) {
	s.buf.Replace(span.Start, span.End, text)
}

// Remove deletes the text of span.
func (s *Session) Remove(span javaast.Span) {
	s.buf.Delete(span.Start, span.End)
}

// Insert inserts text at offset.
func (s *Session) Insert(offset int, text string) {
	s.buf.Insert(offset, text)
}

// Copy returns the original text of span.
func (s *Session) Copy(span javaast.Span) string {
	return s.unit.Text(span)
}

// AddImport requests an import.
func (s *Session) AddImport(qualifiedName string) {
	s.imports.Add(qualifiedName)
}

// RemoveImport requests the removal of an import.
func (s *Session) RemoveImport(qualifiedName string) {
	s.imports.Remove(qualifiedName)
}

// Imports exposes the staged import changes.
func (s *Session) Imports() *ImportRewrite {
	return s.imports
}

// Once returns true the first time it is called with key in this session.
func (s *Session) Once(key string) bool {
	if s.marks[key] {
		return false
	}

	s.marks[key] = true

	return true
}

// StageMember records a member type name inserted into decl's body.
func (s *Session) StageMember(decl *javaast.TypeDecl, name string) {
	s.members[decl.Body.Start] = append(s.members[decl.Body.Start], name)
}

// HasMember reports whether decl declares, or has been given, a member
// type called name.
func (s *Session) HasMember(decl *javaast.TypeDecl, name string) bool {
	if decl.MemberType(name) != nil {
		return true
	}

	return contains(s.members[decl.Body.Start], name)
}

// RemoveSuperclass deletes the extends clause of decl together with the
// blanks before it.
func (s *Session) RemoveSuperclass(decl *javaast.TypeDecl) {
	if decl.Superclass == nil || !s.Once("superclass:"+strconv.Itoa(decl.Span.Start)) {
		return
	}

	s.buf.Delete(leadingSpace(s.unit.Source, decl.SuperclassSpan.Start), decl.SuperclassSpan.End)
}

// Modifiers returns the list rewrite of a modifier list.
func (s *Session) Modifiers(mods *javaast.Modifiers) *ListRewrite {
	key := listKey{kind: ModifierList, at: mods.Span.Start}
	if l, ok := s.lists[key]; ok {
		return l
	}

	l := &ListRewrite{kind: ModifierList, src: s.unit.Source, anchor: mods.Span.Start, next: mods.Next}
	for _, el := range mods.Elements {
		l.elements = append(l.elements, &element{span: el.Span, text: el.Text})
	}

	s.lists[key] = l

	return l
}

// Interfaces returns the list rewrite of a type's implements clause.
func (s *Session) Interfaces(decl *javaast.TypeDecl) *ListRewrite {
	key := listKey{kind: InterfaceList, at: decl.Span.Start}
	if l, ok := s.lists[key]; ok {
		return l
	}

	l := &ListRewrite{kind: InterfaceList, src: s.unit.Source, anchor: decl.HeaderEnd, clause: decl.InterfacesSpan}
	for _, ref := range decl.Interfaces {
		l.elements = append(l.elements, &element{span: ref.Span, text: ref.Text})
	}

	s.lists[key] = l

	return l
}

// Params returns the list rewrite of a method's formal parameters.
func (s *Session) Params(method *javaast.MethodDecl) *ListRewrite {
	key := listKey{kind: ParamList, at: method.Params.Span.Start}
	if l, ok := s.lists[key]; ok {
		return l
	}

	l := &ListRewrite{kind: ParamList, src: s.unit.Source, anchor: method.Params.Span.Start + 1}
	for _, param := range method.Params.Params {
		l.elements = append(l.elements, &element{span: param.Span, text: s.unit.Text(param.Span)})
	}

	s.lists[key] = l

	return l
}

// Throws returns the list rewrite of a method's throws clause.
func (s *Session) Throws(method *javaast.MethodDecl) *ListRewrite {
	key := listKey{kind: ThrowsList, at: method.Span.Start}
	if l, ok := s.lists[key]; ok {
		return l
	}

	l := &ListRewrite{kind: ThrowsList, src: s.unit.Source, anchor: method.Params.Span.End}
	if method.Throws != nil {
		l.clause = method.Throws.Span
		for _, ref := range method.Throws.Types {
			l.elements = append(l.elements, &element{span: ref.Span, text: ref.Text})
		}
	}

	s.lists[key] = l

	return l
}

// Edits renders the session into text edits against the unit's source.
func (s *Session) Edits() ([]m.TextEdit, error) {
	body := NewBuffer(s.unit.Source)
	body.edits = append(body.edits, s.buf.edits...)

	keys := make([]listKey, 0, len(s.lists))
	for key := range s.lists {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].at != keys[j].at {
			return keys[i].at < keys[j].at
		}

		return keys[i].kind < keys[j].kind
	})

	for _, key := range keys {
		s.lists[key].render(body)
	}

	text, err := body.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", s.unit.Path, err)
	}

	s.imports.render(body, text)

	if _, err := body.Bytes(); err != nil {
		return nil, fmt.Errorf("failed to render imports of %s: %w", s.unit.Path, err)
	}

	return body.Edits(), nil
}

// Bytes renders the session and returns the rewritten text.
func (s *Session) Bytes() ([]byte, error) {
	edits, err := s.Edits()
	if err != nil {
		return nil, err
	}

	return Apply(s.unit.Source, edits)
}
