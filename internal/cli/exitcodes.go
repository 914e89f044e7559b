package cli

import (
	"errors"

	"github.com/yaklabco/markrecall/internal/configloader"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// Exit codes for markrecall.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates the command ran but its check failed
	// (validation errors, no such mark).
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrValidationFailed is returned when validate finds errors in the marks file.
	ErrValidationFailed = errors.New("marks file has errors")

	// ErrUsage wraps command-line mistakes the flag parser cannot catch.
	ErrUsage = errors.New("invalid usage")
)

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	var vErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, marks.ErrNoSuchMark),
		errors.Is(err, marks.ErrDuplicate):
		return ExitFailure
	case errors.Is(err, ErrUsage), errors.Is(err, marks.ErrInvalidName):
		return ExitInvalidUsage
	case errors.As(err, &vErr):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, marks.ErrConcurrentEdit):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// Silent reports whether err only signals an exit code and needs no log line.
func Silent(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
