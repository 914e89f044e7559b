// Package reporter renders mark listings, validation reports and refresh
// outcomes as styled text or JSON.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/renumber"
	"github.com/yaklabco/markrecall/pkg/validate"
)

// Compile-time interface checks.
var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
)

// Listing is the content of a marks file grouped under its headings.
type Listing struct {
	// Path is the marks file.
	Path string

	// Root is the project root paths are shown relative to.
	Root string

	Groups []marks.Group
}

// Count returns the number of marks across all groups.
func (l Listing) Count() int {
	n := 0
	for _, g := range l.Groups {
		n += len(g.Marks)
	}
	return n
}

// Refresh is the outcome of refreshing the symbol marks of one source file.
type Refresh struct {
	// File is the source file whose symbols were looked up.
	File string

	// Root is the project root paths are shown relative to.
	Root string

	// DryRun is set when nothing was written.
	DryRun bool

	Result renumber.RefreshResult
}

// Reporter formats and writes command output.
type Reporter interface {
	// Marks writes a listing and returns the number of marks shown.
	Marks(ctx context.Context, listing Listing) (int, error)

	// Validation writes a validation report and returns the number of errors.
	Validation(ctx context.Context, report *validate.Report) (int, error)

	// Refresh writes a symbol refresh outcome and returns the number of moved marks.
	Refresh(ctx context.Context, refresh Refresh) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
