package domain

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// CollisionPolicy decides what happens when a generated type name is
// already taken in the enclosing body.
type CollisionPolicy string

// Supported collision policies.
const (
	CollisionSuffix CollisionPolicy = "suffix"
	CollisionFail   CollisionPolicy = "fail"
)

// ErrNameCollision is returned by the fail policy.
var ErrNameCollision = errors.New("generated type name already exists")

// nameHashLen is the number of hex digits of the body hash kept in names.
const nameHashLen = 5

// ParseCollisionPolicy validates a configured policy name.
func ParseCollisionPolicy(name string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(name)); p {
	case CollisionSuffix, CollisionFail:
		return p, nil
	case "":
		return CollisionSuffix, nil
	default:
		return "", fmt.Errorf("unknown naming collision policy %q", name)
	}
}

// LiftedName derives the name of the type lifted out of an anonymous body.
// It depends only on its inputs: equal bodies under equal field names give
// equal names.
func LiftedName(hostFieldName, bodyText string) string {
	sum := md5.Sum([]byte(bodyText)) //nolint:gosec

	return capitalize(hostFieldName) + "_" + hex.EncodeToString(sum[:])[:nameHashLen]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// AnonymousClassLifter turns "new X() { ... }" field initializers into named
// nested types.
type AnonymousClassLifter struct {
	policy CollisionPolicy
	logger *slog.Logger
}

// NewAnonymousClassLifter constructs a lifter.
func NewAnonymousClassLifter(policy CollisionPolicy, logger *slog.Logger) *AnonymousClassLifter {
	if logger == nil {
		logger = slog.Default()
	}

	if policy == "" {
		policy = CollisionSuffix
	}

	return &AnonymousClassLifter{policy: policy, logger: logger}
}

// Lift appends a named type built from field's anonymous body to the field's
// enclosing type, then points the field at it. When extends is empty the
// anonymous class subclassed the resource base and the new type implements
// the scope's callbacks instead. Otherwise extends is the source text of the
// intermediate superclass, which is kept.
func (l *AnonymousClassLifter) Lift(session *rewrite.Session, field *javaast.FieldDecl, scope m.Scope, extends string) (m.LiftedType, error) {
	if field.Creation == nil || field.Creation.Body == nil {
		return m.LiftedType{}, fmt.Errorf("field %s has no anonymous initializer", field.Name)
	}

	unit := session.Unit()
	host := field.Owner
	body := field.Creation.Body
	bodyText := unit.Text(body.Span)

	name, err := l.uniqueName(session, host, LiftedName(field.Name, bodyText))
	if err != nil {
		return m.LiftedType{}, err
	}

	session.StageMember(host, name)

	lifted := m.LiftedType{
		GeneratedName:       name,
		SourceAnonymousBody: bodyText,
		HostFieldName:       field.Name,
		Static:              scope.ClassScoped,
	}

	appendMember(session, host, l.render(unit, host, body, lifted, scope, extends))

	session.Replace(field.Type.Span, name)
	session.Replace(field.Creation.Span, "new "+name+"()")

	if args := unit.Text(field.Creation.Arguments); strings.TrimSpace(strings.Trim(args, "()")) != "" {
		l.logger.Warn("Dropping constructor arguments of anonymous resource", "field", field.Name, "arguments", args)
	}

	session.AddImport(m.ExtensionContext)

	if extends == "" {
		for _, callback := range scope.CallbackImports() {
			session.AddImport(callback)
		}

		session.RemoveImport(m.ExternalResource)
	}

	if dropped := body.Members - liftedHookCount(body); dropped > 0 {
		l.logger.Warn("Dropping anonymous resource members that are not lifecycle hooks",
			"field", field.Name, "type", name, "members", dropped)
	}

	l.logger.Debug("Lifted anonymous resource", "field", field.Name, "type", name, "static", lifted.Static)

	return lifted, nil
}

func (l *AnonymousClassLifter) uniqueName(session *rewrite.Session, host *javaast.TypeDecl, name string) (string, error) {
	if !session.HasMember(host, name) {
		return name, nil
	}

	if l.policy == CollisionFail {
		return "", fmt.Errorf("%w: %s in %s", ErrNameCollision, name, host.QualifiedName())
	}

	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !session.HasMember(host, candidate) {
			l.logger.Info("Renamed lifted type to avoid a collision", "name", name, "renamed", candidate)
			return candidate, nil
		}
	}
}

func (l *AnonymousClassLifter) render(
	unit *javaast.CompilationUnit,
	host *javaast.TypeDecl,
	body *javaast.AnonymousBody,
	lifted m.LiftedType,
	scope m.Scope,
	extends string,
) string {
	indent, step := memberIndent(unit, host)
	inner := indent + step

	var b strings.Builder

	b.WriteString(indent)

	if lifted.Static {
		b.WriteString("static ")
	}

	b.WriteString("class " + lifted.GeneratedName)

	if extends != "" {
		b.WriteString(" extends " + extends)
	} else {
		b.WriteString(" implements " + scope.Callbacks[0] + ", " + scope.Callbacks[1])
	}

	b.WriteString(" {\n")

	written := 0

	for _, hook := range legacyHooks {
		newHook, _ := scope.NewHook(hook)
		method := selectHook(body.MethodsNamed(hook))

		// An intermediate superclass already provides the missing callback.
		if method == nil && extends != "" {
			continue
		}

		if written > 0 {
			b.WriteString("\n")
		}

		written++

		b.WriteString(inner + "public void " + newHook + "(ExtensionContext " + contextName(method) + ") ")

		if method == nil || method.Body.IsZero() {
			b.WriteString("{\n" + inner + "}\n")
			continue
		}

		text := hookBody(unit, method, scope, extends == "")
		b.WriteString(reindent(text, unit.Indent(method.Span.Start), inner) + "\n")
	}

	b.WriteString(indent + "}\n")

	return b.String()
}

// hookBody returns the text of method's body with super hook calls either
// removed (when the superclass is the resource base) or renamed.
func hookBody(unit *javaast.CompilationUnit, method *javaast.MethodDecl, scope m.Scope, direct bool) string {
	ctx := contextName(method)
	origin := method.Body.Start

	var edits []m.TextEdit

	for _, call := range method.SuperCalls {
		newHook, ok := scope.NewHook(call.Name)
		if !ok {
			continue
		}

		if direct {
			if call.Statement.IsZero() {
				continue
			}

			start, end := statementRange(unit, call.Statement)
			if start < method.Body.Start || end > method.Body.End {
				start, end = call.Statement.Start, call.Statement.End
			}

			edits = append(edits, m.TextEdit{Start: start - origin, End: end - origin})

			continue
		}

		for _, edit := range superCallEdits(unit, call, newHook, ctx) {
			edits = append(edits, m.TextEdit{Start: edit.Start - origin, End: edit.End - origin, NewText: edit.NewText})
		}
	}

	text := unit.Text(method.Body)

	out, err := rewrite.Apply([]byte(text), edits)
	if err != nil {
		return text
	}

	return string(out)
}

// selectHook picks the method adapted among same-named candidates: the
// first one taking no argument or only the callback context.
func selectHook(methods []*javaast.MethodDecl) *javaast.MethodDecl {
	for _, method := range methods {
		if method.Params == nil {
			continue
		}

		params := method.Params.Params
		if len(params) == 0 || len(params) == 1 && IsCallbackParam(params[0]) {
			return method
		}
	}

	return nil
}

func contextName(method *javaast.MethodDecl) string {
	if method != nil && method.Params != nil {
		for _, param := range method.Params.Params {
			if IsCallbackParam(param) {
				return param.Name
			}
		}
	}

	return "context"
}

func liftedHookCount(body *javaast.AnonymousBody) int {
	count := 0

	for _, hook := range legacyHooks {
		if selectHook(body.MethodsNamed(hook)) != nil {
			count++
		}
	}

	return count
}
