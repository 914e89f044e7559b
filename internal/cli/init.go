package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/configloader"
	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force     bool
	format    string
	output    string
	withMarks bool
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a markrecall configuration file",
		Long: `Create a .markrecall.yml configuration file in the current directory with
the default settings written out and commented.

Examples:
  markrecall init                    Create .markrecall.yml
  markrecall init --marks-file       Also create marks.md from its template
  markrecall init --format json      Create .markrecall.json instead
  markrecall init --output custom.yml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .markrecall.yml or .markrecall.json)")
	cmd.Flags().BoolVar(&flags.withMarks, "marks-file", false, "Also create the marks file if it does not exist")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.ErrOrStderr())

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".markrecall.yml"
		if flags.format == "json" {
			outputPath = ".markrecall.json"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Format: flags.format})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(cmd.Context(), absPath, content, flags.force); err != nil {
		return err
	}
	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if flags.withMarks {
		marksPath := marks.ResolvePath(config.DefaultMarksFile, filepath.Dir(absPath))
		existing, _, err := fsutil.ReadFileOrEmpty(cmd.Context(), marksPath)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			if err := fsutil.WriteAtomic(cmd.Context(), marksPath, []byte(marks.Template), fsutil.DefaultFileMode); err != nil {
				return fmt.Errorf("create marks file: %w", err)
			}
			logger.Info("created marks file", logging.FieldMarksFile, marksPath)
		}
	}

	logger.Info("customize your configuration by editing the file")

	return nil
}
