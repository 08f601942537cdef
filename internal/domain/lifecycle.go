package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// LifecycleMethodAdapter rewrites before/after hooks into callback methods.
type LifecycleMethodAdapter struct {
	logger *slog.Logger
}

// NewLifecycleMethodAdapter constructs an adapter.
func NewLifecycleMethodAdapter(logger *slog.Logger) *LifecycleMethodAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &LifecycleMethodAdapter{logger: logger}
}

// Adapt adapts the hooks declared by decl to the scope's callback names and
// returns how many hooks it adapted. directBase tells whether decl extends
// the resource base itself: its super hook calls are then removed, and a
// hook it does not declare gets an empty callback method so that both
// callback interfaces are implemented.
func (a *LifecycleMethodAdapter) Adapt(session *rewrite.Session, decl *javaast.TypeDecl, scope m.Scope, directBase bool) (int, error) {
	if !decl.IsClass() {
		return 0, fmt.Errorf("%s is an %s, not a class", decl.QualifiedName(), decl.Kind)
	}

	adapted := 0

	for _, hook := range legacyHooks {
		newHook, _ := scope.NewHook(hook)
		candidates := decl.MethodsNamed(hook)

		method := selectHook(candidates)
		if method == nil {
			if directBase && len(decl.MethodsNamed(newHook)) == 0 {
				a.addCallbackStub(session, decl, newHook)
			}

			continue
		}

		if len(candidates) > 1 {
			a.logger.Debug("Hook is overloaded, adapting the first candidate",
				"type", decl.QualifiedName(), "hook", hook, "candidates", len(candidates))
		}

		a.AdaptMethod(session, method, scope, directBase)

		adapted++
	}

	return adapted, nil
}

// AdaptMethod rewrites one hook method: protected becomes public, a declared
// Throwable is dropped, the name changes to the scope's callback name and an
// ExtensionContext parameter is added unless one exists. Adapting the same
// method twice in a session has no further effect.
func (a *LifecycleMethodAdapter) AdaptMethod(session *rewrite.Session, method *javaast.MethodDecl, scope m.Scope, directBase bool) {
	hook, ok := legacyHook(func(hook string) bool { return IsLifecycleHook(method, hook) })
	if !ok || !session.Once("hook:"+strconv.Itoa(method.Span.Start)) {
		return
	}

	newHook, _ := scope.NewHook(hook)

	if method.Modifiers != nil {
		mods := session.Modifiers(method.Modifiers)
		if i := mods.Index(isText("protected")); i >= 0 {
			mods.Replace(i, "public")
		}
	}

	throws := session.Throws(method)
	if i := throws.Index(isThrowable); i >= 0 {
		throws.Remove(i)
	}

	session.Replace(method.NameSpan, newHook)

	ctx := contextName(method)

	params := session.Params(method)
	if !params.Contains(isCallbackParamText) {
		params.InsertLast("ExtensionContext " + ctx)
	}

	session.AddImport(m.ExtensionContext)

	for _, call := range method.SuperCalls {
		superHook, ok := legacyHook(func(hook string) bool { return IsSuperHookCall(call, hook) })
		if !ok {
			continue
		}

		callHook, _ := scope.NewHook(superHook)

		if directBase {
			a.removeSuperCall(session, call)
			continue
		}

		for _, edit := range superCallEdits(session.Unit(), call, callHook, ctx) {
			session.Replace(javaast.Span{Start: edit.Start, End: edit.End}, edit.NewText)
		}
	}
}

// legacyHook returns the first legacy hook name accepted by is.
func legacyHook(is func(hook string) bool) (string, bool) {
	for _, hook := range legacyHooks {
		if is(hook) {
			return hook, true
		}
	}

	return "", false
}

func (a *LifecycleMethodAdapter) removeSuperCall(session *rewrite.Session, call *javaast.SuperCall) {
	if call.Statement.IsZero() {
		a.logger.Warn("Cannot remove super hook call used as an expression",
			"file", session.File(), "call", session.Copy(call.Span))

		return
	}

	start, end := statementRange(session.Unit(), call.Statement)
	session.Remove(javaast.Span{Start: start, End: end})
}

func (a *LifecycleMethodAdapter) addCallbackStub(session *rewrite.Session, decl *javaast.TypeDecl, newHook string) {
	if !session.Once("stub:" + strconv.Itoa(decl.Span.Start) + ":" + newHook) {
		return
	}

	indent, _ := memberIndent(session.Unit(), decl)
	text := indent + "public void " + newHook + "(ExtensionContext context) {\n" + indent + "}\n"

	appendMember(session, decl, text)
	session.AddImport(m.ExtensionContext)

	a.logger.Debug("Added empty callback", "type", decl.QualifiedName(), "callback", newHook)
}

// superCallEdits renames super.<hook>(...) to newHook and makes sure the
// context is passed along.
func superCallEdits(unit *javaast.CompilationUnit, call *javaast.SuperCall, newHook, ctx string) []m.TextEdit {
	edits := []m.TextEdit{{Start: call.NameSpan.Start, End: call.NameSpan.End, NewText: newHook}}

	switch {
	case call.ArgCount == 0:
		edits = append(edits, m.TextEdit{Start: call.Arguments.Start, End: call.Arguments.End, NewText: "(" + ctx + ")"})
	case !mentions(unit.Text(call.Arguments), ctx):
		at := call.Arguments.Start + 1
		edits = append(edits, m.TextEdit{Start: at, End: at, NewText: ctx + ", "})
	}

	return edits
}

func mentions(text, word string) bool {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`).MatchString(text)
}

func isText(want string) func(string) bool {
	return func(text string) bool { return text == want }
}

func isThrowable(text string) bool {
	return text == m.Throwable || text == "java.lang."+m.Throwable
}

func isCallbackParamText(text string) bool {
	for _, field := range strings.Fields(text) {
		if field == simpleName(m.ExtensionContext) || field == m.ExtensionContext {
			return true
		}
	}

	return false
}
