// Package config defines the configuration types for markrecall.
// These types are pure data structures; discovery and merging live in internal/configloader.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMarksFile is the marks file name used when none is configured.
const DefaultMarksFile = "marks.md"

// DefaultDebounce is the quiet period before pending renumbering is written.
const DefaultDebounce = 500 * time.Millisecond

// OutputFormat specifies the output format for listings and diagnostics.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ColorMode controls when styled output is produced.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Backup modes.
const (
	BackupModeSidecar = "sidecar"
	BackupModeNone    = "none"
)

// Duration is a time.Duration that reads and writes YAML as "500ms" style strings.
// Bare integers are taken as milliseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}

	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*d = parsed
	return nil
}

// ParseDuration parses "250ms", "1s" or a bare millisecond count.
func ParseDuration(value string) (Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	if ms, err := strconv.Atoi(value); err == nil {
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return Duration(parsed), nil
}

// BackupsConfig controls the sidecar copy written before the marks file changes.
// Enabled is a pointer so an explicit "false" survives merging.
type BackupsConfig struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Mode    string `mapstructure:"mode" yaml:"mode,omitempty"` // "sidecar" or "none"
}

// IsEnabled reports whether backups are on, treating unset as off.
func (b BackupsConfig) IsEnabled() bool {
	return b.Enabled != nil && *b.Enabled && b.Mode != BackupModeNone
}

// SymbolsConfig controls symbol lookups for add and refresh.
type SymbolsConfig struct {
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether symbol lookups are on, treating unset as on.
func (s SymbolsConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config is the root configuration structure for markrecall.
type Config struct {
	// MarksFile is the marks file, absolute or relative to the project directory.
	MarksFile string `mapstructure:"marks_file" yaml:"marks_file,omitempty"`

	// Debounce is how long the tracker waits after the last edit before writing.
	Debounce Duration `mapstructure:"debounce" yaml:"debounce,omitempty"`

	// Backups configures the sidecar backup of the marks file.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups,omitempty"`

	// Symbols configures symbol-aware naming and refresh.
	Symbols SymbolsConfig `mapstructure:"symbols" yaml:"symbols,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Color controls styled output.
	Color ColorMode `mapstructure:"-" yaml:"-"`
}

// Bool returns a pointer to b, for the optional boolean fields.
func Bool(b bool) *bool {
	return &b
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		MarksFile: DefaultMarksFile,
		Debounce:  Duration(DefaultDebounce),
		Backups: BackupsConfig{
			Enabled: Bool(true),
			Mode:    BackupModeSidecar,
		},
		Symbols: SymbolsConfig{
			Enabled: Bool(true),
		},
		Format: FormatText,
		Color:  ColorAuto,
	}
}
