package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/configloader"
	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/reporter"
)

// session is the resolved configuration and marks file a command works on.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	load   *configloader.LoadResult
	store  *marks.Store
	logger *log.Logger
	cmd    *cobra.Command
}

// newSession loads configuration for cmd. overrides carries command flags
// that take precedence over every config source.
func newSession(cmd *cobra.Command, overrides *config.Config) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()

	if overrides == nil {
		overrides = &config.Config{}
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	if marksFlag, _ := cmd.Flags().GetString("marks"); marksFlag != "" {
		abs, err := filepath.Abs(marksFlag)
		if err != nil {
			return nil, fmt.Errorf("resolve marks path: %w", err)
		}
		overrides.MarksFile = abs
	}
	if cmd.Flags().Changed("color") {
		color, _ := cmd.Flags().GetString("color")
		overrides.Color = config.ColorMode(color)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldMarksFile, loadResult.MarksPath,
		logging.FieldDebounce, loadResult.Config.Debounce,
		"backups", loadResult.Config.Backups.IsEnabled(),
		"symbols", loadResult.Config.Symbols.IsEnabled(),
	)

	cfg := loadResult.Config
	return &session{
		ctx:    logging.WithLogger(ctx, logger),
		cfg:    cfg,
		load:   loadResult,
		store:  marks.NewStore(loadResult.MarksPath, marks.WithBackup(backupConfig(cfg))),
		logger: logger,
		cmd:    cmd,
	}, nil
}

func backupConfig(cfg *config.Config) fsutil.BackupConfig {
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.IsEnabled(),
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// reporter builds the output reporter for the resolved format and color mode.
func (s *session) reporter() (reporter.Reporter, error) {
	format, err := reporter.ParseFormat(string(s.cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return reporter.New(reporter.Options{
		Writer:      s.cmd.OutOrStdout(),
		Format:      format,
		Color:       string(s.cfg.Color),
		ShowContext: true,
		ShowSummary: true,
	})
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// absPath resolves a command-line path against the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// parseLine parses a 1-based line number argument.
func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: line must be a positive integer, got %q", ErrUsage, s)
	}
	return n, nil
}

// parseLocation accepts "path:line" or the pair "path" "line".
func parseLocation(args []string) (string, int, error) {
	var path, lineArg string

	switch len(args) {
	case 1:
		idx := strings.LastIndex(args[0], ":")
		if idx <= 0 {
			return "", 0, fmt.Errorf("%w: expected path:line, got %q", ErrUsage, args[0])
		}
		path, lineArg = args[0][:idx], args[0][idx+1:]
	case 2:
		path, lineArg = args[0], args[1]
	default:
		return "", 0, fmt.Errorf("%w: expected path:line or path line", ErrUsage)
	}

	line, err := parseLine(lineArg)
	if err != nil {
		return "", 0, err
	}

	abs, err := absPath(path)
	if err != nil {
		return "", 0, err
	}
	return abs, line, nil
}

// formatFlag registers --format on cmd, bound to the CLI-only config field.
func formatFlag(cmd *cobra.Command, overrides *config.Config) {
	cmd.Flags().StringVar((*string)(&overrides.Format), "format", "", "output format: text, json (default from config)")
}
