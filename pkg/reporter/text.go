package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/markrecall/internal/ui/pretty"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/validate"
)

// TextReporter formats output as styled terminal text.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

func (r *TextReporter) flush(err *error) {
	if flushErr := r.bw.Flush(); *err == nil {
		*err = flushErr
	}
}

// Marks implements Reporter.
func (r *TextReporter) Marks(_ context.Context, listing Listing) (_ int, err error) {
	defer r.flush(&err)

	total := listing.Count()
	if total == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No marks in "+listing.Path))
		}
		return 0, nil
	}

	first := true
	for _, g := range listing.Groups {
		if g.Title == "" && len(g.Marks) == 0 {
			continue
		}
		if g.Title != "" {
			if !first {
				fmt.Fprintln(r.bw)
			}
			fmt.Fprint(r.bw, r.styles.FormatSection(g.Title, g.Level))
		}
		for _, m := range g.Marks {
			fmt.Fprint(r.bw, r.styles.FormatMark(m, listing.Root))
		}
		first = false
	}

	return total, nil
}

// Validation implements Reporter.
func (r *TextReporter) Validation(_ context.Context, report *validate.Report) (_ int, err error) {
	defer r.flush(&err)

	if report == nil {
		return 0, nil
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(report.Path, len(report.Diagnostics)))
		for _, diag := range report.Diagnostics {
			fmt.Fprint(r.bw, r.styles.FormatDiagnostic(report.Path, diag, r.opts.ShowContext))
		}
		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(report.Marks, report.Errors(), report.Warnings()))
	}

	return report.Errors(), nil
}

// Refresh implements Reporter.
func (r *TextReporter) Refresh(_ context.Context, refresh Refresh) (_ int, err error) {
	defer r.flush(&err)

	res := refresh.Result
	verb := "moved"
	if refresh.DryRun {
		verb = "would move"
	}

	for _, mv := range res.Moved {
		fmt.Fprintf(r.bw, "  %s %s  %s\n",
			r.styles.Symbol.Render(mv.Mark.Name),
			r.styles.Dim.Render(verb),
			r.styles.Location.Render(fmt.Sprintf("%s:%d -> %d",
				marks.DisplayPath(mv.Mark.FilePath, refresh.Root), mv.Mark.Line, mv.To)),
		)
	}
	for _, m := range res.Stale {
		fmt.Fprintf(r.bw, "  %s %s  %s\n",
			r.styles.Symbol.Render(m.Name),
			r.styles.Warning.Render("not found"),
			r.styles.Location.Render(fmt.Sprintf("%s:%d", marks.DisplayPath(m.FilePath, refresh.Root), m.Line)),
		)
	}

	if r.opts.ShowSummary {
		summary := fmt.Sprintf("%s: %d %s, %d unchanged, %d not found",
			marks.DisplayPath(refresh.File, refresh.Root), len(res.Moved), verb, res.Unchanged, len(res.Stale))
		if len(res.Moved) == 0 && len(res.Stale) == 0 {
			fmt.Fprintln(r.bw, r.styles.Success.Render(summary))
		} else {
			fmt.Fprintln(r.bw, summary)
		}
	}

	return len(res.Moved), nil
}
