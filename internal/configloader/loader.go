// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, hierarchical merging,
// environment variable support and validation.
package configloader

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// ProjectDir is the directory relative marks file names resolve against.
	ProjectDir string

	// MarksPath is the absolute marks file location.
	MarksPath string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (MARKRECALL_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.markrecall.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/markrecall/config.yaml)
//  6. System config (/etc/markrecall/config.yaml)
//  7. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir, err := absDir(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	layers := []struct {
		name   string
		path   string
		ignore bool
	}{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	}

	for _, layer := range layers {
		if layer.ignore || layer.path == "" {
			continue
		}

		fileCfg, err := loadConfigFile(ctx, layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}

		check := ValidateWithFile(merge(config.NewConfig(), fileCfg), layer.path)
		if !check.Valid() {
			return nil, &check.Errors[0]
		}

		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	projectDir, err := FindProjectRoot(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("find project root: %w", err)
	}

	result.Config = cfg
	result.ProjectDir = projectDir
	result.MarksPath = marks.ResolvePath(cfg.MarksFile, projectDir)
	return result, nil
}

// loadConfigFile loads a configuration from a YAML file.
func loadConfigFile(ctx context.Context, path string) (*config.Config, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	return config.FromYAML(content)
}

// WriteConfig writes a configuration template to path, refusing to overwrite
// an existing file unless force is set.
func WriteConfig(ctx context.Context, path string, content []byte, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
