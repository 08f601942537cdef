package rewrite

import (
	"strings"

	"gooze.dev/pkg/rulemig/internal/javaast"
)

// ListKind identifies the syntactic list a ListRewrite edits.
type ListKind int

// Supported list kinds.
const (
	ModifierList ListKind = iota
	InterfaceList
	ParamList
	ThrowsList
)

type element struct {
	span     javaast.Span
	text     string
	removed  bool
	replaced *string
}

func (e *element) current() string {
	if e.replaced != nil {
		return *e.replaced
	}

	return e.text
}

// ListRewrite stages changes to one comma or whitespace separated list.
// It answers membership queries against both the committed elements and
// the changes staged so far, and renders to text edits on flush.
type ListRewrite struct {
	kind     ListKind
	src      []byte
	elements []*element
	first    []string
	last     []string

	// anchor is where elements go when the list is empty.
	anchor int
	// clause covers keyword and elements ("throws X"), zero for lists
	// without a keyword.
	clause javaast.Span
	// next is the first offset after a modifier list.
	next int
}

// Len returns the number of elements after staged changes.
func (l *ListRewrite) Len() int {
	count := len(l.first) + len(l.last)

	for _, el := range l.elements {
		if !el.removed {
			count++
		}
	}

	return count
}

// Texts returns the element texts after staged changes.
func (l *ListRewrite) Texts() []string {
	out := append([]string{}, l.first...)

	for _, el := range l.elements {
		if !el.removed {
			out = append(out, el.current())
		}
	}

	return append(out, l.last...)
}

// Contains reports whether any element, committed or staged, satisfies match.
func (l *ListRewrite) Contains(match func(text string) bool) bool {
	for _, text := range l.Texts() {
		if match(text) {
			return true
		}
	}

	return false
}

// Index returns the index of the first committed element satisfying match
// that has not been removed, or -1.
func (l *ListRewrite) Index(match func(text string) bool) int {
	for i, el := range l.elements {
		if !el.removed && match(el.current()) {
			return i
		}
	}

	return -1
}

// InsertFirst stages text at the head of the list.
func (l *ListRewrite) InsertFirst(text string) {
	l.first = append(l.first, text)
}

// InsertLast stages text at the tail of the list.
func (l *ListRewrite) InsertLast(text string) {
	l.last = append(l.last, text)
}

// Remove stages the removal of committed element i.
func (l *ListRewrite) Remove(i int) {
	l.elements[i].removed = true
}

// Replace stages the replacement of committed element i.
func (l *ListRewrite) Replace(i int, text string) {
	l.elements[i].replaced = &text
}

func (l *ListRewrite) changed() bool {
	if len(l.first) > 0 || len(l.last) > 0 {
		return true
	}

	for _, el := range l.elements {
		if el.removed || el.replaced != nil {
			return true
		}
	}

	return false
}

func (l *ListRewrite) separator() string {
	if l.kind != ModifierList {
		return ", "
	}

	if len(l.elements) >= 2 {
		return string(l.src[l.elements[0].span.End:l.elements[1].span.Start])
	}

	if len(l.elements) == 1 && l.next > l.elements[0].span.End {
		return string(l.src[l.elements[0].span.End:l.next])
	}

	return " "
}

func (l *ListRewrite) render(buf *Buffer) {
	if !l.changed() {
		return
	}

	sep := l.separator()
	inserted := append(append([]string{}, l.first...), l.last...)

	if len(l.elements) == 0 {
		l.renderEmpty(buf, strings.Join(inserted, sep), sep)
		return
	}

	kept := 0

	for _, el := range l.elements {
		if !el.removed {
			kept++
		}
	}

	if kept == 0 {
		l.renderAllRemoved(buf, inserted, sep)
		return
	}

	n := len(l.elements)

	trailing := n
	for trailing > 0 && l.elements[trailing-1].removed {
		trailing--
	}

	for i, el := range l.elements {
		switch {
		case el.removed && i >= trailing:
			// handled as one run below
		case el.removed:
			buf.Delete(el.span.Start, l.elements[i+1].span.Start)
		case el.replaced != nil:
			buf.Replace(el.span.Start, el.span.End, *el.replaced)
		}
	}

	if trailing < n {
		buf.Delete(l.elements[trailing-1].span.End, l.elements[n-1].span.End)
	}

	if len(l.first) > 0 {
		buf.Insert(l.elements[0].span.Start, strings.Join(l.first, sep)+sep)
	}

	if len(l.last) > 0 {
		buf.Insert(l.elements[n-1].span.End, sep+strings.Join(l.last, sep))
	}
}

func (l *ListRewrite) renderEmpty(buf *Buffer, text, sep string) {
	switch l.kind {
	case ModifierList:
		buf.Insert(l.anchor, text+sep)
	case InterfaceList:
		buf.Insert(l.anchor, " implements "+text)
	case ThrowsList:
		buf.Insert(l.anchor, " throws "+text)
	case ParamList:
		buf.Insert(l.anchor, text)
	}
}

func (l *ListRewrite) renderAllRemoved(buf *Buffer, inserted []string, sep string) {
	first := l.elements[0].span.Start
	last := l.elements[len(l.elements)-1].span.End

	if len(inserted) > 0 {
		buf.Replace(first, last, strings.Join(inserted, sep))
		return
	}

	switch l.kind {
	case ModifierList:
		buf.Delete(first, l.next)
	case InterfaceList, ThrowsList:
		buf.Delete(leadingSpace(l.src, l.clause.Start), l.clause.End)
	case ParamList:
		buf.Delete(first, last)
	}
}

// leadingSpace walks back from pos over blanks on the same logical run.
func leadingSpace(src []byte, pos int) int {
	for pos > 0 && isBlank(src[pos-1]) {
		pos--
	}

	return pos
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
