package configloader

import "github.com/yaklabco/markrecall/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Optional booleans: override overwrites base if set, so an explicit false wins
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.MarksFile != "" {
		result.MarksFile = override.MarksFile
	}
	if override.Debounce != 0 {
		result.Debounce = override.Debounce
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled != nil {
		result.Backups.Enabled = config.Bool(*override.Backups.Enabled)
	}
	if override.Symbols.Enabled != nil {
		result.Symbols.Enabled = config.Bool(*override.Symbols.Enabled)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
