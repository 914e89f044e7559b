package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/markrecall/pkg/validate"
)

// FormatDiagnostic formats a single marks-file diagnostic for terminal output.
func (s *Styles) FormatDiagnostic(path string, diag validate.Diagnostic, showContext bool) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d", s.FilePath.Render(path), diag.Line)

	builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
	))

	if showContext && strings.TrimSpace(diag.Text) != "" {
		builder.WriteString(s.FormatSourceContext(diag.Text))
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev validate.Severity) string {
	switch sev {
	case validate.SeverityError:
		return s.Error.Render("error")
	case validate.SeverityWarning:
		return s.Warning.Render("warning")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the offending marks-file line.
func (s *Styles) FormatSourceContext(line string) string {
	const indent = "        "
	return indent + s.SourceLine.Render(line) + "\n"
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}

// FormatSummaryOneLine renders the closing line of a validation run.
func (s *Styles) FormatSummaryOneLine(markCount, errors, warnings int) string {
	if errors == 0 && warnings == 0 {
		return s.Success.Render(fmt.Sprintf("%s, no problems found.", plural(markCount, "mark"))) + "\n"
	}

	parts := []string{plural(markCount, "mark")}
	if errors > 0 {
		parts = append(parts, s.Failure.Render(plural(errors, "error")))
	}
	if warnings > 0 {
		parts = append(parts, s.Warning.Render(plural(warnings, "warning")))
	}
	return strings.Join(parts, ", ") + "\n"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
