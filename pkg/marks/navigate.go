package marks

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	// ErrNoSuchMark is returned when an index or name matches no mark.
	ErrNoSuchMark = errors.New("no such mark")

	// ErrDuplicate is returned when adding a mark at a location that already has one.
	ErrDuplicate = errors.New("a mark already exists at this location")
)

// InFile returns the marks pointing into path, ordered by line. Marks on the
// same line keep their file order.
func InFile(ms []Mark, path string) []Mark {
	var out []Mark
	for _, m := range ms {
		if SamePath(m.FilePath, path) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b Mark) int { return a.Line - b.Line })
	return out
}

// Next returns the first mark in path below line, wrapping to the first mark
// of the file.
func Next(ms []Mark, path string, line int) (Mark, bool) {
	inFile := InFile(ms, path)
	if len(inFile) == 0 {
		return Mark{}, false
	}
	for _, m := range inFile {
		if m.Line > line {
			return m, true
		}
	}
	return inFile[0], true
}

// Previous returns the last mark in path above line, wrapping to the last
// mark of the file.
func Previous(ms []Mark, path string, line int) (Mark, bool) {
	inFile := InFile(ms, path)
	if len(inFile) == 0 {
		return Mark{}, false
	}
	for i := len(inFile) - 1; i >= 0; i-- {
		if inFile[i].Line < line {
			return inFile[i], true
		}
	}
	return inFile[len(inFile)-1], true
}

// At returns every mark at path:line.
func At(ms []Mark, path string, line int) []Mark {
	var out []Mark
	for _, m := range InFile(ms, path) {
		if m.Line == line {
			out = append(out, m)
		}
	}
	return out
}

// ByIndex returns the mark with the given ordinal.
func ByIndex(ms []Mark, index int) (Mark, error) {
	for _, m := range ms {
		if m.Index == index {
			return m, nil
		}
	}
	return Mark{}, fmt.Errorf("%w: index %d", ErrNoSuchMark, index)
}

// Find resolves ref as a mark index or, failing that, an exact name.
// The first mark with a matching name wins.
func Find(ms []Mark, ref string) (Mark, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		return ByIndex(ms, n)
	}
	for _, m := range ms {
		if m.Name == ref {
			return m, nil
		}
	}
	return Mark{}, fmt.Errorf("%w: %q", ErrNoSuchMark, ref)
}
