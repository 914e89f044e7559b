package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user and system config directories.
const appName = "markrecall"

// ConfigPaths represents discovered configuration file paths.
type ConfigPaths struct {
	// System is the system-wide config path (e.g., /etc/markrecall/config.yaml).
	System string

	// User is the user-level config path (e.g., ~/.config/markrecall/config.yaml).
	User string

	// Project is the project-level config path (e.g., ./.markrecall.yml).
	Project string

	// Explicit is a config path provided via --config flag.
	Explicit string
}

// projectConfigFiles are the config file names we search for, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".markrecall.yml",
	".markrecall.yaml",
	"markrecall.yml",
	"markrecall.yaml",
}

// vcsRootMarkers are directories that indicate a VCS root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds configuration files in standard locations.
// It searches for:
//   - System config at /etc/markrecall/config.{yaml,yml}
//   - User config at $XDG_CONFIG_HOME/markrecall/config.{yaml,yml}
//   - Project config by searching upward from workDir for .markrecall.{yml,yaml}
//
// Missing files are represented as empty strings (not errors).
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	paths := &ConfigPaths{
		System: findSystemConfig(),
		User:   findUserConfig(),
	}

	projectConfig, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Project = projectConfig

	return paths, nil
}

func findSystemConfig() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return findConfigInDir(filepath.Join(programData, appName))
	}

	return findConfigInDir(filepath.Join("/etc", appName))
}

func findUserConfig() string {
	dir := UserConfigDir()
	if dir == "" {
		return ""
	}
	return findConfigInDir(dir)
}

// UserConfigDir returns $XDG_CONFIG_HOME/markrecall, falling back to ~/.config/markrecall.
// It returns "" when no home directory can be determined.
func UserConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, appName)
}

// findConfigInDir returns the first config.{yaml,yml} in dir, or "".
func findConfigInDir(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches upward from startDir for a project config file.
// Returns the path to the first config file found, or empty string if none.
// Stops at VCS roots, the home directory, or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, found, err := walkUp(ctx, startDir, func(dir string) (string, bool) {
		for _, name := range projectConfigFiles {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path, true
			}
		}
		return "", false
	})
	if err != nil || !found {
		return "", err
	}
	return dir, nil
}

// FindProjectRoot returns the nearest ancestor of startDir holding a project
// config or a VCS marker. When neither exists, startDir itself is the root.
func FindProjectRoot(ctx context.Context, startDir string) (string, error) {
	absStart, err := absDir(startDir)
	if err != nil {
		return "", err
	}

	root, found, err := walkUp(ctx, absStart, func(dir string) (string, bool) {
		for _, name := range projectConfigFiles {
			if fileExists(filepath.Join(dir, name)) {
				return dir, true
			}
		}
		if isVCSRoot(dir) {
			return dir, true
		}
		return "", false
	})
	if err != nil {
		return "", err
	}
	if !found {
		return absStart, nil
	}
	return root, nil
}

// walkUp calls probe on startDir and each parent until probe reports a hit.
// The walk stops after a VCS root, at the home directory, or at the filesystem root.
func walkUp(ctx context.Context, startDir string, probe func(dir string) (string, bool)) (string, bool, error) {
	currentDir, err := absDir(startDir)
	if err != nil {
		return "", false, err
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		homeDir = ""
	}

	for {
		select {
		case <-ctx.Done():
			return "", false, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if hit, ok := probe(currentDir); ok {
			return hit, true, nil
		}

		if isVCSRoot(currentDir) {
			return "", false, nil
		}

		if homeDir != "" && currentDir == homeDir {
			return "", false, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false, nil
		}
		currentDir = parentDir
	}
}

func absDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// isVCSRoot returns true if the directory contains a VCS root marker.
func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
