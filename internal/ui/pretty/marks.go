package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/markrecall/pkg/marks"
)

// FormatMark renders one listing row: index, label and location. Paths inside
// root are shown relative to it.
func (s *Styles) FormatMark(m marks.Mark, root string) string {
	var label string
	switch {
	case m.IsSymbol():
		label = s.Symbol.Render(m.Name)
	case m.IsAnonymous():
		label = s.Anonymous.Render("(anonymous)")
	default:
		label = s.Name.Render(m.Name)
	}

	location := fmt.Sprintf("%s:%d", marks.DisplayPath(m.FilePath, root), m.Line)

	return fmt.Sprintf("  %s  %s  %s\n",
		s.Index.Render(fmt.Sprintf("%3d", m.Index)),
		label,
		s.Location.Render(location),
	)
}

// FormatSection renders a heading of the marks file above its marks.
func (s *Styles) FormatSection(title string, level int) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + s.Section.Render(title) + "\n"
}
