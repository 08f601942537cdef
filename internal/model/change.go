package model

// TextEdit replaces the bytes [Start, End) of the base text with NewText.
// Start == End is an insertion.
type TextEdit struct {
	Start   int
	End     int
	NewText string
}

// IsInsert reports whether the edit only inserts text.
func (e TextEdit) IsInsert() bool {
	return e.Start == e.End
}

// Overlaps reports whether the two edits touch a common byte. Insertions at
// the boundary of a replacement do not overlap it.
func (e TextEdit) Overlaps(other TextEdit) bool {
	if e.IsInsert() || other.IsInsert() {
		return other.Start > e.Start && other.Start < e.End ||
			e.Start > other.Start && e.Start < other.End
	}

	return e.Start < other.End && other.Start < e.End
}

// ChangeUnit is a file-scoped bundle of edits computed against one version
// of the file, identified by BaseHash.
type ChangeUnit struct {
	File     Path
	Label    string
	Primary  bool
	BaseHash uint64
	Edits    []TextEdit
	// Origin is the file whose matches produced the unit.
	Origin Path
}

// IsEmpty reports whether the unit carries no edit.
func (c ChangeUnit) IsEmpty() bool {
	return len(c.Edits) == 0
}
