package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}

	return []byte(DefaultTemplateHeader() + `

# Marks file, absolute or relative to the project directory
marks_file: ` + DefaultMarksFile + `

# Quiet period before the tracker writes renumbered lines
debounce: ` + DefaultDebounce.String() + `

# Sidecar backup written before every change to the marks file
backups:
  enabled: true
  mode: sidecar

# Use tree-sitter symbols to name new marks and refresh @symbol marks
symbols:
  enabled: true
`), nil
}

func templateToJSON() ([]byte, error) {
	cfg := map[string]any{
		"marks_file": DefaultMarksFile,
		"debounce":   DefaultDebounce.String(),
		"backups": map[string]any{
			"enabled": true,
			"mode":    BackupModeSidecar,
		},
		"symbols": map[string]any{
			"enabled": true,
		},
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# markrecall configuration
# See: https://github.com/yaklabco/markrecall`
}
