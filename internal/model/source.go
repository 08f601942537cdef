// Package model defines the data structures shared by the migration engine.
package model

// Path represents a file system path.
type Path string

// File represents a Java source file together with a fingerprint of the
// content it was read with.
type File struct {
	Path Path
	Hash uint64
}

// TypeBinding is a resolved type reference.
//
// File is empty for types that live outside the indexed project, such as
// the JUnit classes themselves. Superclass holds the resolved qualified name
// of the direct superclass, empty when it is unknown or java.lang.Object.
type TypeBinding struct {
	QualifiedName string
	File          Path
	Superclass    string
}

// IsZero reports whether the binding is unset.
func (b TypeBinding) IsZero() bool {
	return b.QualifiedName == ""
}
