package model

import "gooze.dev/pkg/rulemig/internal/javaast"

// Shape classifies a matched declaration.
type Shape string

const (
	// ShapeNamedField is a rule field initialized with a named subclass.
	ShapeNamedField Shape = "named-field"
	// ShapeClassField is a class rule field initialized with a named subclass.
	ShapeClassField Shape = "class-field"
	// ShapeAnonymousField is a rule field initialized with an anonymous subclass.
	ShapeAnonymousField Shape = "anonymous-field"
	// ShapeClass is a type declaration extending the resource base that no
	// rule field of the same file refers to.
	ShapeClass Shape = "class"
)

// Match is a declaration found by the find stage. It is read-only once built.
type Match struct {
	File        Path
	Shape       Shape
	ClassScoped bool
	// Name is the field name, or the simple type name for ShapeClass.
	Name string
	Line int

	// Exactly one of Field and Type is set.
	Field *javaast.FieldDecl
	Type  *javaast.TypeDecl

	// Start is the binding the hierarchy walk begins from: the instantiated
	// type of a field initializer, else the declared type, or the class
	// itself for ShapeClass.
	Start TypeBinding
}

// Scope returns the strategy row for the match.
func (m Match) Scope() Scope {
	return ScopeFor(m.ClassScoped)
}

// LiftedType describes a named nested type synthesized from an anonymous body.
type LiftedType struct {
	GeneratedName       string
	SourceAnonymousBody string
	HostFieldName       string
	Static              bool
}
