package marks

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for names that would not survive a round trip
// through the marks file.
var ErrInvalidName = errors.New("invalid mark name")

// DisplayPath returns path relative to root when it lies inside root,
// otherwise path unchanged.
func DisplayPath(path, root string) string {
	if root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Format renders m as a marks-file line without a trailing newline.
func Format(m Mark, root string) string {
	entry := DisplayPath(m.FilePath, root) + ":" + strconv.Itoa(m.Line)
	if m.Name == "" {
		return entry
	}
	return m.Name + nameSep + entry
}

// ValidateName checks that name parses back as the same name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidName, name)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: %q spans lines", ErrInvalidName, name)
	case strings.Contains(name, nameSep):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, nameSep)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "#"), strings.HasPrefix(name, commentOpen):
		return fmt.Errorf("%w: %q would be read as a comment", ErrInvalidName, name)
	}
	return nil
}
