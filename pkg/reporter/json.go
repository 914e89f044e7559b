package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/validate"
)

// jsonVersion is the schema version of JSON output.
const jsonVersion = "1.0.0"

// JSONListing is the JSON form of a mark listing.
type JSONListing struct {
	Version  string        `json:"version"`
	Path     string        `json:"path"`
	Sections []JSONSection `json:"sections"`
	Total    int           `json:"total"`
}

// JSONSection is one heading and the marks under it.
type JSONSection struct {
	Title string       `json:"title,omitempty"`
	Level int          `json:"level,omitempty"`
	Marks []marks.Mark `json:"marks"`
}

// JSONValidation is the JSON form of a validation report.
type JSONValidation struct {
	Version string `json:"version"`
	*validate.Report
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// JSONMove is one relocated symbol mark.
type JSONMove struct {
	marks.Mark
	To int `json:"to"`
}

// JSONRefresh is the JSON form of a symbol refresh.
type JSONRefresh struct {
	Version   string       `json:"version"`
	File      string       `json:"file"`
	DryRun    bool         `json:"dryRun"`
	Moved     []JSONMove   `json:"moved"`
	Stale     []marks.Mark `json:"stale"`
	Unchanged int          `json:"unchanged"`
}

// JSONReporter formats output as JSON documents.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

func (r *JSONReporter) encode(v any) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// Marks implements Reporter.
func (r *JSONReporter) Marks(_ context.Context, listing Listing) (int, error) {
	out := JSONListing{
		Version:  jsonVersion,
		Path:     listing.Path,
		Sections: make([]JSONSection, 0, len(listing.Groups)),
		Total:    listing.Count(),
	}

	for _, g := range listing.Groups {
		if g.Title == "" && len(g.Marks) == 0 {
			continue
		}
		section := JSONSection{Title: g.Title, Level: g.Level, Marks: g.Marks}
		if section.Marks == nil {
			section.Marks = []marks.Mark{}
		}
		out.Sections = append(out.Sections, section)
	}

	if err := r.encode(out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// Validation implements Reporter.
func (r *JSONReporter) Validation(_ context.Context, report *validate.Report) (int, error) {
	if report == nil {
		report = &validate.Report{}
	}
	if report.Diagnostics == nil {
		clone := *report
		clone.Diagnostics = []validate.Diagnostic{}
		report = &clone
	}

	out := JSONValidation{
		Version:  jsonVersion,
		Report:   report,
		Errors:   report.Errors(),
		Warnings: report.Warnings(),
	}

	if err := r.encode(out); err != nil {
		return 0, err
	}
	return out.Errors, nil
}

// Refresh implements Reporter.
func (r *JSONReporter) Refresh(_ context.Context, refresh Refresh) (int, error) {
	out := JSONRefresh{
		Version:   jsonVersion,
		File:      refresh.File,
		DryRun:    refresh.DryRun,
		Moved:     make([]JSONMove, 0, len(refresh.Result.Moved)),
		Stale:     refresh.Result.Stale,
		Unchanged: refresh.Result.Unchanged,
	}
	if out.Stale == nil {
		out.Stale = []marks.Mark{}
	}
	for _, mv := range refresh.Result.Moved {
		out.Moved = append(out.Moved, JSONMove{Mark: mv.Mark, To: mv.To})
	}

	if err := r.encode(out); err != nil {
		return 0, err
	}
	return len(out.Moved), nil
}
