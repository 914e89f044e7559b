// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Severity styles
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Mark listing
	Index     lipgloss.Style
	Name      lipgloss.Style
	Symbol    lipgloss.Style
	Anonymous lipgloss.Style
	Section   lipgloss.Style

	// Diagnostic components
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Message    lipgloss.Style
	SourceLine lipgloss.Style

	// Diff styles
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Summary styles
	Success lipgloss.Style
	Failure lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles returns the output styles, colored or plain.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return plainStyles()
	}

	fg := func(code string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
	}
	bold := lipgloss.NewStyle().Bold(true)

	return &Styles{
		Error:   fg("9").Bold(true),
		Warning: fg("11").Bold(true),
		Info:    fg("12").Bold(true),

		Index:     fg("8"),
		Name:      fg("14").Bold(true),
		Symbol:    fg("13"),
		Anonymous: fg("7").Italic(true),
		Section:   fg("12").Bold(true).Underline(true),

		FilePath:   bold,
		Location:   fg("8"),
		Message:    lipgloss.NewStyle(),
		SourceLine: fg("7"),

		DiffHeader:  bold,
		DiffHunk:    fg("14"),
		DiffAdd:     fg("10"),
		DiffRemove:  fg("9"),
		DiffContext: fg("8"),

		Success: fg("10").Bold(true),
		Failure: fg("9").Bold(true),

		Dim:  fg("8"),
		Bold: bold,
	}
}

func plainStyles() *Styles {
	p := lipgloss.NewStyle()
	return &Styles{
		Error: p, Warning: p, Info: p,
		Index: p, Name: p, Symbol: p, Anonymous: p, Section: p,
		FilePath: p, Location: p, Message: p, SourceLine: p,
		DiffHeader: p, DiffHunk: p, DiffAdd: p, DiffRemove: p, DiffContext: p,
		Success: p, Failure: p,
		Dim: p, Bold: p,
	}
}

// IsColorEnabled resolves a --color mode ("auto", "always", "never") for
// writer. Auto colors only terminals, and never when NO_COLOR is set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := writer.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
