// Package renumber keeps the line numbers in a marks file in step with edits
// to the files the marks point into.
//
// Edits are folded into an in-memory table of pending line numbers as they
// arrive. The marks file is rewritten once edits go quiet for a debounce
// window, touching only the digits of lines whose number changed.
package renumber

import "strings"

// Edit is one replaced range in a tracked document. Lines are 0-based;
// EndLine is the last original line the edit touched.
type Edit struct {
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Text      string `json:"text"`
}

// Delta is the net number of lines the edit adds (negative when it removes).
func (e Edit) Delta() int {
	return strings.Count(e.Text, "\n") - (e.EndLine - e.StartLine)
}

// Event is a batch of edits applied to one document.
type Event struct {
	Path  string `json:"path"`
	Edits []Edit `json:"edits"`
}

// Shift returns where a mark on 1-based line ends up after e. Marks below the
// edit move by its delta; marks inside a range that lost lines collapse to
// the first line of the range; anything else stays. Edits that keep the line
// count are ignored even if they rewrite the marked line. The bool reports
// whether the line changed.
func Shift(line int, e Edit) (int, bool) {
	delta := e.Delta()
	if delta == 0 {
		return line, false
	}

	markLine := line - 1
	next := line

	switch {
	case markLine > e.EndLine:
		next = line + delta
	case markLine >= e.StartLine && delta < 0:
		next = e.StartLine + 1
	}

	return next, next != line
}
