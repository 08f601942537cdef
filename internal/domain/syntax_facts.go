// Package domain contains the ExternalResource migration engine: the find
// stage, the hierarchy walk and the rewrites applied to each declaration.
package domain

import (
	"strings"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// excludedRuleTypes are ExternalResource subclasses shipped with JUnit that
// other migrations take care of.
var excludedRuleTypes = map[string]bool{
	m.TestNameRule:    true,
	m.TemporaryFolder: true,
}

// legacyHooks are the hook names of the resource base in the order they are
// adapted.
var legacyHooks = []string{m.HookBefore, m.HookAfter}

// SyntaxFacts answers stateless questions about declarations. Questions
// that need type resolution go through the source model.
type SyntaxFacts struct {
	model adapter.SourceModel
}

// NewSyntaxFacts constructs SyntaxFacts over model.
func NewSyntaxFacts(model adapter.SourceModel) *SyntaxFacts {
	return &SyntaxFacts{model: model}
}

// IsLegacyResource reports whether b is the resource base or derives from it.
func (f *SyntaxFacts) IsLegacyResource(b m.TypeBinding) bool {
	seen := make(map[string]bool)

	for !b.IsZero() && !seen[b.QualifiedName] {
		if b.QualifiedName == m.ExternalResource {
			return true
		}

		seen[b.QualifiedName] = true

		next, ok := f.model.ResolveSuperclass(b)
		if !ok {
			return false
		}

		b = next
	}

	return false
}

// IsExcludedRuleType reports whether rules of this type are left alone.
func IsExcludedRuleType(qualifiedName string) bool {
	return excludedRuleTypes[qualifiedName]
}

// HasMarker reports whether mods carry the annotation qualifiedName, written
// either fully qualified or as a simple name made visible by an import or by
// the unit's own package.
func HasMarker(unit *javaast.CompilationUnit, mods *javaast.Modifiers, qualifiedName string) bool {
	return MarkerIndex(unit, mods, qualifiedName) >= 0
}

// MarkerIndex returns the position of the annotation in mods, or -1.
func MarkerIndex(unit *javaast.CompilationUnit, mods *javaast.Modifiers, qualifiedName string) int {
	if mods == nil {
		return -1
	}

	simple, pkg := simpleName(qualifiedName), packageName(qualifiedName)

	for i, el := range mods.Elements {
		switch {
		case el.Annotation == qualifiedName:
			return i
		case el.Annotation == simple && visible(unit, pkg, qualifiedName):
			return i
		}
	}

	return -1
}

func visible(unit *javaast.CompilationUnit, pkg, qualifiedName string) bool {
	if unit.Package == pkg {
		return true
	}

	for _, imp := range unit.Imports {
		if imp.Static {
			continue
		}

		if imp.Name == qualifiedName || imp.OnDemand && imp.Name == pkg {
			return true
		}
	}

	return false
}

// IsLifecycleHook reports whether method is the hook called name.
func IsLifecycleHook(method *javaast.MethodDecl, name string) bool {
	return method != nil && method.Name == name
}

// IsCallbackParam reports whether param is typed ExtensionContext.
func IsCallbackParam(param *javaast.Param) bool {
	return param.Type == simpleName(m.ExtensionContext) || param.Type == m.ExtensionContext
}

// IsSuperHookCall reports whether call is super.<hook>(...).
func IsSuperHookCall(call *javaast.SuperCall, hook string) bool {
	return call != nil && call.Name == hook
}

// DirectlyExtendsBase reports whether decl's extends clause names the
// resource base itself.
func (f *SyntaxFacts) DirectlyExtendsBase(unit *javaast.CompilationUnit, decl *javaast.TypeDecl) bool {
	if decl.Superclass == nil {
		return false
	}

	b, ok := f.model.ResolveType(unit, decl.Outer, decl.Superclass)

	return ok && b.QualifiedName == m.ExternalResource
}

// SelfBinding resolves the binding of decl itself.
func (f *SyntaxFacts) SelfBinding(unit *javaast.CompilationUnit, decl *javaast.TypeDecl) (m.TypeBinding, bool) {
	return f.model.ResolveType(unit, decl, &javaast.TypeRef{Name: decl.Name})
}

func simpleName(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, "."); i >= 0 {
		return qualifiedName[i+1:]
	}

	return qualifiedName
}

func packageName(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, "."); i >= 0 {
		return qualifiedName[:i]
	}

	return ""
}
