package domain

import (
	"strings"

	"gooze.dev/pkg/rulemig/internal/javaast"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// InterfaceAnnotationInjector adds super-interfaces and annotations at most
// once per declaration and session.
type InterfaceAnnotationInjector struct{}

// NewInterfaceAnnotationInjector constructs an injector.
func NewInterfaceAnnotationInjector() *InterfaceAnnotationInjector {
	return &InterfaceAnnotationInjector{}
}

// AddInterface makes decl implement qualifiedName. It reports whether the
// interface was inserted; false means the committed list or a staged
// insertion already names it. The import is requested either way.
func (i *InterfaceAnnotationInjector) AddInterface(session *rewrite.Session, decl *javaast.TypeDecl, qualifiedName string) bool {
	session.AddImport(qualifiedName)

	list := session.Interfaces(decl)
	if list.Contains(namesType(qualifiedName)) {
		return false
	}

	list.InsertLast(simpleName(qualifiedName))

	return true
}

// AddAnnotation puts the marker annotation qualifiedName first in mods,
// with the same rules as AddInterface.
func (i *InterfaceAnnotationInjector) AddAnnotation(session *rewrite.Session, mods *javaast.Modifiers, qualifiedName string) bool {
	session.AddImport(qualifiedName)

	list := session.Modifiers(mods)
	if list.Contains(namesAnnotation(qualifiedName)) {
		return false
	}

	list.InsertFirst("@" + simpleName(qualifiedName))

	return true
}

func namesType(qualifiedName string) func(string) bool {
	simple := simpleName(qualifiedName)

	return func(text string) bool {
		name, _, _ := strings.Cut(text, "<")
		name = strings.TrimSpace(name)

		return name == simple || name == qualifiedName
	}
}

func namesAnnotation(qualifiedName string) func(string) bool {
	simple := simpleName(qualifiedName)

	return func(text string) bool {
		name, ok := strings.CutPrefix(text, "@")
		if !ok {
			return false
		}

		name, _, _ = strings.Cut(name, "(")
		name = strings.TrimSpace(name)

		return name == simple || name == qualifiedName
	}
}
