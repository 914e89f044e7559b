// Package fix provides byte-offset text edits and their application.
// Marks-file rewrites are expressed as edits so that every byte outside an
// edited range is carried over untouched.
package fix

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// Len returns the number of original bytes the edit replaces.
func (e TextEdit) Len() int {
	return e.EndOffset - e.StartOffset
}

// EditBuilder accumulates text edits for a file.
type EditBuilder struct {
	Edits []TextEdit
}

// NewEditBuilder creates a new EditBuilder.
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{
		Edits: make([]TextEdit, 0),
	}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) {
	b.Edits = append(b.Edits, TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     newText,
	})
}

// Insert adds an edit that inserts text at the given offset.
func (b *EditBuilder) Insert(offset int, text string) {
	b.ReplaceRange(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *EditBuilder) Delete(start, end int) {
	b.ReplaceRange(start, end, "")
}

// Len returns the number of accumulated edits.
func (b *EditBuilder) Len() int {
	return len(b.Edits)
}

// Apply validates the accumulated edits and applies them to content.
func (b *EditBuilder) Apply(content []byte) ([]byte, error) {
	return Apply(content, b.Edits)
}
