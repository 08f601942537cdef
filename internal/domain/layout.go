package domain

import (
	"bytes"
	"strings"

	"gooze.dev/pkg/rulemig/internal/javaast"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// memberIndent returns the indentation used by decl's members and the
// indentation step between decl and its members.
func memberIndent(unit *javaast.CompilationUnit, decl *javaast.TypeDecl) (string, string) {
	outer := unit.Indent(decl.Span.Start)

	var first int

	switch {
	case len(decl.Fields) > 0:
		first = decl.Fields[0].Span.Start
	case len(decl.Methods) > 0:
		first = decl.Methods[0].Span.Start
	case len(decl.Types) > 0:
		first = decl.Types[0].Span.Start
	}

	if first > 0 && unit.LineStart(first) != unit.LineStart(decl.Body.Start) {
		inner := unit.Indent(first)
		if step, ok := strings.CutPrefix(inner, outer); ok && step != "" {
			return inner, step
		}
	}

	step := "\t"
	if strings.HasPrefix(outer, " ") {
		step = "    "
	}

	return outer + step, step
}

// appendMember inserts text, a complete member declaration ending in a
// newline, before the closing brace of decl's body. A blank line separates
// it from the previous member.
func appendMember(session *rewrite.Session, decl *javaast.TypeDecl, text string) {
	src := session.Unit().Source
	closing := decl.Body.End - 1
	lineStart := session.Unit().LineStart(closing)

	if isBlankText(src[lineStart:closing]) && lineStart > decl.Body.Start {
		session.Insert(lineStart, "\n"+text)
		return
	}

	session.Insert(closing, "\n"+text)
}

// statementRange widens a statement span to its whole line when nothing
// else shares the line.
func statementRange(unit *javaast.CompilationUnit, stmt javaast.Span) (int, int) {
	src := unit.Source
	lineStart := unit.LineStart(stmt.Start)

	end := len(src)
	if i := bytes.IndexByte(src[stmt.End:], '\n'); i >= 0 {
		end = stmt.End + i + 1
	}

	if isBlankText(src[lineStart:stmt.Start]) && isBlankText(src[stmt.End:end]) {
		return lineStart, end
	}

	return stmt.Start, stmt.End
}

// reindent moves every line after the first from one indentation prefix to
// another.
func reindent(text, from, to string) string {
	if from == to {
		return text
	}

	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if rest, ok := strings.CutPrefix(lines[i], from); ok {
			lines[i] = to + rest
		}
	}

	return strings.Join(lines, "\n")
}

func isBlankText(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}
