// Package marks reads and writes the marks file: a plain-text list of named
// or anonymous references to file locations.
//
// A marks file looks like:
//
//	# comment line
//	<!-- multi-line
//	     HTML comment -->
//	name: relative/or/absolute/path:LINE
//	@symbolName: path:LINE
//	path/with/no/name:LINE
//
// Names may contain colons; the separator between name and path is ": ".
// Relative paths resolve against the directory containing the marks file.
package marks

import (
	"path/filepath"
	"strconv"
	"strings"
)

// SymbolPrefix starts the name of marks derived from a code symbol.
const SymbolPrefix = "@"

// Mark is one entry of the marks file.
type Mark struct {
	// Name is empty for anonymous marks.
	Name string `json:"name,omitempty"`

	// FilePath is absolute once parsed against a project root.
	FilePath string `json:"filePath"`

	// Line is 1-based.
	Line int `json:"line"`

	// Index is the 0-based position among all marks in file order.
	// It is derived on every parse and never written to the file.
	Index int `json:"index"`
}

// IsAnonymous reports whether the mark has no name.
func (m Mark) IsAnonymous() bool {
	return m.Name == ""
}

// IsSymbol reports whether the mark tracks a code symbol.
func (m Mark) IsSymbol() bool {
	return strings.HasPrefix(m.Name, SymbolPrefix) && len(m.Name) > len(SymbolPrefix)
}

// Symbol returns the symbol name without its prefix, or "" for other marks.
func (m Mark) Symbol() string {
	if !m.IsSymbol() {
		return ""
	}
	return m.Name[len(SymbolPrefix):]
}

// Location renders "path:line".
func (m Mark) Location() string {
	return m.FilePath + ":" + strconv.Itoa(m.Line)
}

// Label is the name if set, otherwise the base name of the file.
func (m Mark) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return filepath.Base(m.FilePath)
}

// SameLocation reports whether both marks point at the same file and line.
func (m Mark) SameLocation(o Mark) bool {
	return m.Line == o.Line && SamePath(m.FilePath, o.FilePath)
}

// SymbolName builds a mark name for a code symbol.
func SymbolName(symbol string) string {
	return SymbolPrefix + symbol
}

// SamePath compares two file paths after cleaning.
func SamePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
