package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/pkg/marks"
)

type recallFlags struct {
	relative bool
}

func newRecallCommand() *cobra.Command {
	flags := &recallFlags{}

	cmd := &cobra.Command{
		Use:   "recall <index|name>",
		Short: "Print the location of a mark",
		Long: `Print "path:line" for a mark picked by index or name, ready to hand to an
editor. Indices are the ones shown by list, starting at 0.

Examples:
  markrecall recall 0
  markrecall recall entry
  $EDITOR "$(markrecall recall @Parse)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}

			ms, err := s.store.Load(s.ctx)
			if err != nil {
				return err
			}

			m, err := marks.Find(ms, args[0])
			if err != nil {
				return err
			}

			s.printf("%s\n", location(m, s.store.Root(), flags.relative))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.relative, "relative", "r", false, "print the path relative to the project root")

	return cmd
}

func newNextCommand() *cobra.Command {
	return newStepCommand("next", "Print the next mark in a file below a line", marks.Next)
}

func newPrevCommand() *cobra.Command {
	return newStepCommand("prev", "Print the previous mark in a file above a line", marks.Previous)
}

// newStepCommand builds next and prev; both wrap around at the ends of the file.
func newStepCommand(use, short string, step func([]marks.Mark, string, int) (marks.Mark, bool)) *cobra.Command {
	flags := &recallFlags{}

	cmd := &cobra.Command{
		Use:   use + " <path:line | path line>",
		Short: short,
		Long: short + `, wrapping around at the end of the file.
Only marks pointing into the given file are considered.

Examples:
  markrecall ` + use + ` src/parser.go:42`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, line, err := parseLocation(args)
			if err != nil {
				return err
			}

			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}

			ms, err := s.store.Load(s.ctx)
			if err != nil {
				return err
			}

			m, ok := step(ms, path, line)
			if !ok {
				return fmt.Errorf("%w: no marks in %s", marks.ErrNoSuchMark, marks.DisplayPath(path, s.store.Root()))
			}

			s.printf("%s\n", location(m, s.store.Root(), flags.relative))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.relative, "relative", "r", false, "print the path relative to the project root")

	return cmd
}

func location(m marks.Mark, root string, relative bool) string {
	path := m.FilePath
	if relative {
		path = marks.DisplayPath(path, root)
	}
	return fmt.Sprintf("%s:%d", path, m.Line)
}
