// Package cli provides the Cobra command structure for markrecall.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root markrecall command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string
	var marksPath string

	rootCmd := &cobra.Command{
		Use:   "markrecall",
		Short: "Named bookmarks into source files that follow your edits",
		Long: `markrecall keeps a plain-text marks file (marks.md by default) of named and
anonymous references to lines in source files.

Each line of the marks file is "name: path:line" or "path:line". Paths are
relative to the directory holding the marks file. Lines starting with # and
HTML comment blocks are ignored, so the file doubles as notes.

The track command follows an editor's change stream and keeps line numbers
in step with inserted and deleted lines. Marks named @symbol can be moved
back onto their definitions with refresh.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&marksPath, "marks", "",
		"marks file (default: marks.md in the project root)")

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newRecallCommand())
	rootCmd.AddCommand(newNextCommand())
	rootCmd.AddCommand(newPrevCommand())
	rootCmd.AddCommand(newRefreshCommand())
	rootCmd.AddCommand(newTrackCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newUndoCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
