// Package rewrite implements edit sessions over Java compilation units.
//
// Edits are queued against the original text and only applied when the
// session is flushed, so spans taken from the syntax model stay valid for
// the whole lifetime of a session.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	m "gooze.dev/pkg/rulemig/internal/model"
)

// ErrOverlappingEdit is returned when two queued edits touch the same bytes.
var ErrOverlappingEdit = errors.New("overlapping edit")

// Buffer is a queue of edits to apply to a fixed base text.
type Buffer struct {
	old   []byte
	edits []m.TextEdit
}

// NewBuffer returns a buffer over text.
func NewBuffer(text []byte) *Buffer {
	return &Buffer{old: text}
}

// Insert queues an insertion at pos.
func (b *Buffer) Insert(pos int, text string) {
	b.Replace(pos, pos, text)
}

// Delete queues the removal of [start, end).
func (b *Buffer) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Replace queues the replacement of [start, end) with text.
func (b *Buffer) Replace(start, end int, text string) {
	if start < 0 || end > len(b.old) || start > end {
		panic(fmt.Sprintf("invalid edit range [%d,%d) for text of length %d", start, end, len(b.old)))
	}

	if start == end && text == "" {
		return
	}

	b.edits = append(b.edits, m.TextEdit{Start: start, End: end, NewText: text})
}

// Len returns the number of queued edits.
func (b *Buffer) Len() int {
	return len(b.edits)
}

// Edits returns the queued edits in application order.
func (b *Buffer) Edits() []m.TextEdit {
	return SortEdits(b.edits)
}

// Bytes applies the queued edits to the base text.
func (b *Buffer) Bytes() ([]byte, error) {
	return Apply(b.old, b.edits)
}

// SortEdits orders edits by start offset. At equal offsets insertions come
// before replacements and otherwise queue order is kept.
func SortEdits(edits []m.TextEdit) []m.TextEdit {
	sorted := make([]m.TextEdit, len(edits))
	copy(sorted, edits)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}

		return sorted[i].IsInsert() && !sorted[j].IsInsert()
	})

	return sorted
}

// Apply returns text with edits applied.
func Apply(text []byte, edits []m.TextEdit) ([]byte, error) {
	var out bytes.Buffer

	cursor := 0

	for _, edit := range SortEdits(edits) {
		if edit.Start < cursor {
			return nil, fmt.Errorf("%w at [%d,%d)", ErrOverlappingEdit, edit.Start, edit.End)
		}

		if edit.End > len(text) {
			return nil, fmt.Errorf("edit [%d,%d) is out of range for text of length %d", edit.Start, edit.End, len(text))
		}

		out.Write(text[cursor:edit.Start])
		out.WriteString(edit.NewText)
		cursor = edit.End
	}

	out.Write(text[cursor:])

	return out.Bytes(), nil
}
