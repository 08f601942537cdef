// Package javaast is a small Java syntax model built on tree-sitter.
//
// Every node keeps byte spans into the original source so that the rewrite
// layer can address text without holding on to the tree-sitter tree.
package javaast

import (
	"bytes"
	"strings"
)

// Span is a half-open byte range [Start, End) into a compilation unit source.
type Span struct {
	Start int
	End   int
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Text slices the span out of src.
func (s Span) Text(src []byte) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}

	return string(src[s.Start:s.End])
}

// CompilationUnit is one parsed .java file.
type CompilationUnit struct {
	Path        string
	Source      []byte
	Package     string
	PackageSpan Span
	Imports     []*Import
	Types       []*TypeDecl
}

// Import is a single import declaration.
type Import struct {
	// Name is the imported name without a trailing ".*".
	Name     string
	Static   bool
	OnDemand bool
	Span     Span
}

// SimpleName returns the last segment of a single-type import.
func (i *Import) SimpleName() string {
	return lastSegment(i.Name)
}

// TypeDecl is a class, interface, enum or record declaration.
type TypeDecl struct {
	Kind      string
	Name      string
	Span      Span
	NameSpan  Span
	Modifiers *Modifiers

	// HeaderEnd is the offset just before the body's opening brace, after any
	// type parameters, superclass and interface clauses.
	HeaderEnd int

	Superclass *TypeRef
	// SuperclassSpan covers the whole "extends X" clause.
	SuperclassSpan Span

	Interfaces []*TypeRef
	// InterfacesSpan covers the whole "implements A, B" clause.
	InterfacesSpan Span

	// Body covers the class body including both braces.
	Body    Span
	Fields  []*FieldDecl
	Methods []*MethodDecl
	Types   []*TypeDecl

	Outer *TypeDecl
	Unit  *CompilationUnit
}

// QualifiedName builds the dotted name from the package and enclosing types.
func (t *TypeDecl) QualifiedName() string {
	names := []string{t.Name}
	for outer := t.Outer; outer != nil; outer = outer.Outer {
		names = append([]string{outer.Name}, names...)
	}

	if t.Unit != nil && t.Unit.Package != "" {
		names = append([]string{t.Unit.Package}, names...)
	}

	return strings.Join(names, ".")
}

// MethodsNamed returns the methods with the given name in declaration order.
func (t *TypeDecl) MethodsNamed(name string) []*MethodDecl {
	return methodsNamed(t.Methods, name)
}

// MemberType returns the directly nested type with the given simple name.
func (t *TypeDecl) MemberType(name string) *TypeDecl {
	for _, nested := range t.Types {
		if nested.Name == name {
			return nested
		}
	}

	return nil
}

// IsClass reports whether the declaration is a class.
func (t *TypeDecl) IsClass() bool {
	return t.Kind == KindClass
}

// Type declaration kinds.
const (
	KindClass     = "class"
	KindInterface = "interface"
	KindEnum      = "enum"
	KindRecord    = "record"
)

// Modifiers holds annotations and modifier keywords in source order.
type Modifiers struct {
	// Span is empty (Start == End) and sits at the declaration start when the
	// declaration carries no modifiers.
	Span     Span
	Elements []*Modifier
	// Next is the offset of the first token after the modifier list.
	Next int
}

// Modifier is either an annotation or a keyword such as "public".
type Modifier struct {
	Text string
	// Annotation is the annotation name without '@', empty for keywords.
	Annotation string
	Span       Span
}

// IsAnnotation reports whether the modifier is an annotation.
func (m *Modifier) IsAnnotation() bool {
	return m.Annotation != ""
}

// Keyword returns the index of keyword in the list, or -1.
func (m *Modifiers) Keyword(keyword string) int {
	if m == nil {
		return -1
	}

	for i, el := range m.Elements {
		if !el.IsAnnotation() && el.Text == keyword {
			return i
		}
	}

	return -1
}

// Has reports whether the keyword is present.
func (m *Modifiers) Has(keyword string) bool {
	return m.Keyword(keyword) >= 0
}

// Annotations returns the annotation elements only.
func (m *Modifiers) Annotations() []*Modifier {
	if m == nil {
		return nil
	}

	var out []*Modifier

	for _, el := range m.Elements {
		if el.IsAnnotation() {
			out = append(out, el)
		}
	}

	return out
}

// TypeRef is a reference to a type as written in source.
type TypeRef struct {
	// Name is the type name without type arguments, e.g. "Outer.Inner".
	Name string
	// Text is the full source text including type arguments.
	Text string
	Span Span
}

// SimpleName returns the last segment of the referenced name.
func (r *TypeRef) SimpleName() string {
	if r == nil {
		return ""
	}

	return lastSegment(r.Name)
}

// FieldDecl is a field declaration. Only the first declarator is modelled.
type FieldDecl struct {
	Span      Span
	Modifiers *Modifiers
	Type      *TypeRef
	Name      string
	NameSpan  Span
	// Value is the initializer expression span, zero when absent.
	Value Span
	// Creation is set when the initializer is a "new X(...)" expression.
	Creation *Creation
	Owner    *TypeDecl
}

// Creation is an object creation expression, optionally with an anonymous body.
type Creation struct {
	Span      Span
	Type      *TypeRef
	Arguments Span
	Body      *AnonymousBody
}

// AnonymousBody is the class body of an anonymous subclass.
type AnonymousBody struct {
	Span    Span
	Methods []*MethodDecl
	// Members counts every member declaration, methods included.
	Members int
}

// MethodsNamed returns the methods with the given name in declaration order.
func (b *AnonymousBody) MethodsNamed(name string) []*MethodDecl {
	return methodsNamed(b.Methods, name)
}

// MethodDecl is a method declaration.
type MethodDecl struct {
	Span       Span
	Modifiers  *Modifiers
	ReturnType string
	Name       string
	NameSpan   Span
	Params     *ParamList
	// Throws is nil when the method declares no exceptions.
	Throws *ThrowsClause
	// Body covers the block including braces, zero for abstract methods.
	Body       Span
	SuperCalls []*SuperCall
}

// ParamList is a formal parameter list.
type ParamList struct {
	// Span includes both parentheses.
	Span   Span
	Params []*Param
}

// Param is a single formal parameter.
type Param struct {
	Type string
	Name string
	Span Span
}

// ThrowsClause is the "throws A, B" clause of a method.
type ThrowsClause struct {
	Span  Span
	Types []*TypeRef
}

// SuperCall is a "super.name(args)" invocation found in a method body.
type SuperCall struct {
	Span     Span
	Name     string
	NameSpan Span
	// Arguments includes both parentheses.
	Arguments Span
	ArgCount  int
	// Statement covers the enclosing expression statement, zero when the call
	// is not a statement on its own.
	Statement Span
}

// AllTypes returns every type declaration of the unit, outer types first.
func (u *CompilationUnit) AllTypes() []*TypeDecl {
	var out []*TypeDecl

	var visit func(types []*TypeDecl)

	visit = func(types []*TypeDecl) {
		for _, t := range types {
			out = append(out, t)
			visit(t.Types)
		}
	}

	visit(u.Types)

	return out
}

// FindType looks up a declaration by qualified name. Nested types may be
// separated by '.' or '$'.
func (u *CompilationUnit) FindType(qualifiedName string) *TypeDecl {
	want := strings.ReplaceAll(qualifiedName, "$", ".")

	for _, t := range u.AllTypes() {
		if t.QualifiedName() == want {
			return t
		}
	}

	return nil
}

// Text returns the source text covered by span.
func (u *CompilationUnit) Text(span Span) string {
	return span.Text(u.Source)
}

// Line returns the 1-based line number of offset.
func (u *CompilationUnit) Line(offset int) int {
	if offset > len(u.Source) {
		offset = len(u.Source)
	}

	return bytes.Count(u.Source[:offset], []byte("\n")) + 1
}

// LineStart returns the offset of the first byte on offset's line.
func (u *CompilationUnit) LineStart(offset int) int {
	if offset > len(u.Source) {
		offset = len(u.Source)
	}

	return bytes.LastIndexByte(u.Source[:offset], '\n') + 1
}

// Indent returns the leading whitespace of offset's line.
func (u *CompilationUnit) Indent(offset int) string {
	start := u.LineStart(offset)
	end := start

	for end < len(u.Source) && (u.Source[end] == ' ' || u.Source[end] == '\t') {
		end++
	}

	return string(u.Source[start:end])
}

func methodsNamed(methods []*MethodDecl, name string) []*MethodDecl {
	var out []*MethodDecl

	for _, method := range methods {
		if method.Name == name {
			out = append(out, method)
		}
	}

	return out
}

func lastSegment(name string) string {
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}

	return name
}
