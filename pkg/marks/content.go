package marks

import (
	"strconv"
	"strings"

	"github.com/yaklabco/markrecall/pkg/fix"
)

// Append adds entry as the last line of content.
func Append(content, entry string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + entry + "\n"
}

// Prepend adds entry before the first mark, after any leading block of
// comments and blank lines.
func Prepend(content, entry string) string {
	if content == "" {
		return entry + "\n"
	}

	body, trailingNewline := strings.CutSuffix(content, "\n")
	lines := Scan(body)

	at := len(lines)
	for i, l := range lines {
		if l.Kind != KindBlank && l.Kind != KindComment {
			at = i
			break
		}
	}

	texts := make([]string, 0, len(lines)+1)
	for _, l := range lines[:at] {
		texts = append(texts, l.Text)
	}
	texts = append(texts, entry)
	for _, l := range lines[at:] {
		texts = append(texts, l.Text)
	}

	out := strings.Join(texts, "\n")
	if trailingNewline || at == len(lines) {
		out += "\n"
	}
	return out
}

// LineEdits builds one edit per mark line whose ordinal has an entry in
// updates that differs from the number currently written. Only the digits
// are replaced; every other byte stays as it is. Values below 1 are ignored.
func LineEdits(content string, updates map[int]int) []fix.TextEdit {
	if len(updates) == 0 {
		return nil
	}

	var edits []fix.TextEdit
	for _, l := range MarkLines(content) {
		want, ok := updates[l.Ordinal]
		if !ok || want < 1 || want == l.Number {
			continue
		}
		span := l.Abs(l.Digits)
		edits = append(edits, fix.TextEdit{
			StartOffset: span.Start,
			EndOffset:   span.End,
			NewText:     strconv.Itoa(want),
		})
	}
	return edits
}

// Rewrite applies updates (mark ordinal to new line number) to content and
// returns the new content with the number of lines changed.
func Rewrite(content string, updates map[int]int) (string, int) {
	edits := LineEdits(content, updates)
	if len(edits) == 0 {
		return content, 0
	}

	out, err := fix.Apply([]byte(content), edits)
	if err != nil {
		// Digit spans of distinct lines never overlap.
		return content, 0
	}
	return string(out), len(edits)
}

// DeleteIndices removes the physical lines of the marks with the given
// ordinals. Unknown ordinals are ignored. Returns the new content and the
// number of lines removed.
func DeleteIndices(content string, indices ...int) (string, int) {
	if len(indices) == 0 {
		return content, 0
	}

	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}

	b := fix.NewEditBuilder()
	for _, l := range MarkLines(content) {
		if !drop[l.Ordinal] {
			continue
		}
		end := min(l.Offset+len(l.Text)+1, len(content))
		b.Delete(l.Offset, end)
	}
	if b.Len() == 0 {
		return content, 0
	}

	out, err := b.Apply([]byte(content))
	if err != nil {
		return content, 0
	}
	return string(out), b.Len()
}
