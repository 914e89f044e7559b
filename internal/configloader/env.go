package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yaklabco/markrecall/pkg/config"
)

// envVarPrefix is the prefix for all markrecall environment variables.
const envVarPrefix = "MARKRECALL_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeDuration
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"MARKS_FILE":      {field: "marks_file", typ: envTypeString, help: "Marks file, absolute or relative to the project"},
	"DEBOUNCE":        {field: "debounce", typ: envTypeDuration, help: "Tracker debounce, e.g. 500ms"},
	"BACKUPS_ENABLED": {field: "backups.enabled", typ: envTypeBool, help: "Write a sidecar backup: true or false"},
	"BACKUPS_MODE":    {field: "backups.mode", typ: envTypeString, help: "Backup mode: sidecar or none"},
	"SYMBOLS_ENABLED": {field: "symbols.enabled", typ: envTypeBool, help: "Use tree-sitter symbols: true or false"},
	"FORMAT":          {field: "format", typ: envTypeString, help: "Output format: text or json"},
	"COLOR":           {field: "color", typ: envTypeString, help: "Color output: auto, always or never"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MARKRECALL_ (e.g., MARKRECALL_MARKS_FILE).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeDuration:
		d, err := config.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", envVar, value)
		}
		cfg.Debounce = d
		return nil
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "marks_file":
		cfg.MarksFile = value
	case "backups.mode":
		cfg.Backups.Mode = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "color":
		cfg.Color = config.ColorMode(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "backups.enabled":
		cfg.Backups.Enabled = config.Bool(value)
	case "symbols.enabled":
		cfg.Symbols.Enabled = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
