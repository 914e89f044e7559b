package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/markrecall/internal/ui/pretty"
	"github.com/yaklabco/markrecall/pkg/fix"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// DiffReporter previews marks-file rewrites as git-style unified diffs.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// Report writes every diff that has changes and returns how many it wrote.
// Nil diffs are skipped.
func (r *DiffReporter) Report(_ context.Context, diffs ...*fix.Diff) (int, error) {
	var files, added, removed int

	for _, d := range diffs {
		if !d.HasChanges() {
			continue
		}
		files++
		added += d.Additions
		removed += d.Deletions

		if err := r.writeDiff(d); err != nil {
			return files, err
		}
	}

	if files > 0 && r.opts.ShowSummary {
		if _, err := fmt.Fprintln(r.out, r.summary(files, added, removed)); err != nil {
			return files, fmt.Errorf("write diff summary: %w", err)
		}
	}
	return files, nil
}

func (r *DiffReporter) writeDiff(d *fix.Diff) error {
	path := marks.DisplayPath(d.Path, r.opts.Root)

	var sb strings.Builder
	sb.WriteString(r.styles.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", path, path)) + "\n")
	sb.WriteString(r.styles.DiffRemove.Render("--- a/"+path) + "\n")
	sb.WriteString(r.styles.DiffAdd.Render("+++ b/"+path) + "\n")

	for _, h := range d.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		sb.WriteString(r.styles.DiffHunk.Render(header) + "\n")
		for _, l := range h.Lines {
			sb.WriteString(r.line(l) + "\n")
		}
	}
	sb.WriteString("\n")

	if _, err := io.WriteString(r.out, sb.String()); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}
	return nil
}

func (r *DiffReporter) line(l fix.Line) string {
	var (
		prefix string
		style  lipgloss.Style
	)
	switch l.Kind {
	case fix.LineAdd:
		prefix, style = "+", r.styles.DiffAdd
	case fix.LineRemove:
		prefix, style = "-", r.styles.DiffRemove
	default:
		prefix, style = " ", r.styles.DiffContext
	}
	return style.Render(prefix + l.Text)
}

// summary renders "N files changed, A insertions(+), D deletions(-)".
func (r *DiffReporter) summary(files, added, removed int) string {
	parts := []string{fmt.Sprintf("%d %s changed", files, plural(files, "file", "files"))}
	if added > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(
			fmt.Sprintf("%d %s(+)", added, plural(added, "insertion", "insertions"))))
	}
	if removed > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(
			fmt.Sprintf("%d %s(-)", removed, plural(removed, "deletion", "deletions"))))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
