package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes the offending marks-file line under diagnostics.
	ShowContext bool

	// ShowSummary displays a closing summary line.
	ShowSummary bool

	// Compact uses minified JSON.
	Compact bool

	// Root, when set, is stripped from file paths in diff headers.
	Root string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      FormatText,
		Color:       "auto",
		ShowContext: true,
		ShowSummary: true,
	}
}
