// Package validate checks a marks file for lines that look like marks but
// are not, marks pointing at missing files, and duplicated locations.
package validate

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one finding on one line of the marks file.
type Diagnostic struct {
	// Line is the 1-based physical line in the marks file.
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Text     string   `json:"text"`
}

// Report is the outcome of validating one marks file.
type Report struct {
	Path        string       `json:"path"`
	Marks       int          `json:"marks"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Errors counts error diagnostics.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings counts warning diagnostics.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Content validates marks-file content whose relative paths resolve against
// root. Lines the mark grammar skips silently are reported here so a human
// can fix them; comments and blank lines are always fine.
func Content(ctx context.Context, content, root string) (*Report, error) {
	report := &Report{}
	firstAt := make(map[string]int)
	lines := lineCounter{}

	for _, l := range marks.Scan(content) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}

		row := l.Row + 1
		add := func(sev Severity, format string, args ...any) {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Line:     row,
				Severity: sev,
				Message:  fmt.Sprintf(format, args...),
				Text:     l.Text,
			})
		}

		switch l.Kind {
		case marks.KindBlank, marks.KindComment:
			continue
		case marks.KindInvalid:
			add(SeverityError, "%s", invalidReason(l.Text))
			continue
		case marks.KindMark:
		}

		report.Marks++
		path := marks.Resolve(l.RawPath(), root)
		loc := marks.Format(marks.Mark{FilePath: path, Line: l.Number}, root)

		if first, dup := firstAt[loc]; dup {
			add(SeverityError, "duplicate location %s (first marked on line %d)", loc, first)
			continue
		}
		firstAt[loc] = row

		total, ok := lines.count(ctx, path)
		if !ok {
			add(SeverityError, "file not found: %s; remove this mark or fix the path", marks.DisplayPath(path, root))
			continue
		}
		if l.Number > total {
			add(SeverityWarning, "line %d is past the end of %s (%d lines)", l.Number, marks.DisplayPath(path, root), total)
		}
	}

	return report, nil
}

// File validates the marks file behind store.
func File(ctx context.Context, store *marks.Store) (*Report, error) {
	content, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}
	report, err := Content(ctx, content, store.Root())
	if err != nil {
		return nil, err
	}
	report.Path = store.Path()
	return report, nil
}

func invalidReason(text string) string {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "|"):
		return "markdown table row is not a mark; expected name: path:line"
	case !strings.Contains(trimmed, ":"):
		return "no colon found; expected name: path:line or path:line"
	default:
		suffix := strings.TrimSpace(trimmed[strings.LastIndex(trimmed, ":")+1:])
		return fmt.Sprintf("invalid line number %q; expected a positive integer after the last colon", suffix)
	}
}

// lineCounter caches line counts per target file; -1 marks an unreadable file.
type lineCounter map[string]int

func (c lineCounter) count(ctx context.Context, path string) (int, bool) {
	if n, ok := c[path]; ok {
		return n, n >= 0
	}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		c[path] = -1
		return 0, false
	}

	n := bytes.Count(content, []byte("\n"))
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	c[path] = n
	return n, true
}
