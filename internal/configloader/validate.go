package configloader

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yaklabco/markrecall/pkg/config"
)

// maxDebounce bounds the tracker debounce; longer waits lose edits on exit.
const maxDebounce = time.Minute

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "backups.mode").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FilePath, e.Field} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(append(parts, e.Message), ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	knownFormats     = []config.OutputFormat{config.FormatText, config.FormatJSON}
	knownColorModes  = []config.ColorMode{config.ColorAuto, config.ColorAlways, config.ColorNever}
	knownBackupModes = []string{config.BackupModeSidecar, config.BackupModeNone}
)

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	fail := func(field string, value any, format string, args ...any) {
		result.Errors = append(result.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(cfg.MarksFile) == "" {
		fail("marks_file", cfg.MarksFile, "marks file must not be empty")
	}

	if d := cfg.Debounce.Std(); d < 0 {
		fail("debounce", cfg.Debounce.String(), "debounce must not be negative")
	} else if d > maxDebounce {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "debounce",
			Value:   cfg.Debounce.String(),
			Message: fmt.Sprintf("debounce %s is longer than %s; pending renumbering may be lost", d, maxDebounce),
		})
	}

	if cfg.Format != "" && !IsValidFormat(cfg.Format) {
		fail("format", cfg.Format, "invalid format %q; must be one of: %s", cfg.Format, oneOf(knownFormats))
	}
	if cfg.Color != "" && !slices.Contains(knownColorModes, cfg.Color) {
		fail("color", cfg.Color, "invalid color mode %q; must be one of: %s", cfg.Color, oneOf(knownColorModes))
	}
	if cfg.Backups.Mode != "" && !IsValidBackupMode(cfg.Backups.Mode) {
		fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: %s", cfg.Backups.Mode, oneOf(knownBackupModes))
	}

	return result
}

// ValidateWithFile validates cfg and attributes every finding to filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for _, findings := range [][]ValidationError{result.Errors, result.Warnings} {
		for i := range findings {
			findings[i].FilePath = filePath
		}
	}
	return result
}

// IsValidFormat reports whether f is a known output format.
func IsValidFormat(f config.OutputFormat) bool {
	return slices.Contains(knownFormats, f)
}

// IsValidBackupMode reports whether mode is a known backup mode.
func IsValidBackupMode(mode string) bool {
	return slices.Contains(knownBackupModes, mode)
}

func oneOf[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
