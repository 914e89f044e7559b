package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/marks"
)

type deleteFlags struct {
	at   string
	file string
	yes  bool
}

func newDeleteCommand() *cobra.Command {
	flags := &deleteFlags{}

	cmd := &cobra.Command{
		Use:     "delete [index|name...]",
		Aliases: []string{"rm"},
		Short:   "Delete marks by index, name, location or file",
		Long: `Delete marks from the marks file. Marks are picked by index or name, by
location with --at, or all marks pointing into a file with --file. Only the
mark lines are removed; comments and blank lines stay.

Deleting every mark of a file asks for confirmation on a terminal.

Examples:
  markrecall delete 3
  markrecall delete entry @Parse
  markrecall delete --at src/parser.go:42
  markrecall delete --file src/old.go --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.at, "at", "", "delete the marks at path:line")
	cmd.Flags().StringVar(&flags.file, "file", "", "delete every mark pointing into this file")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string, flags *deleteFlags) error {
	selectors := 0
	if len(args) > 0 {
		selectors++
	}
	if flags.at != "" {
		selectors++
	}
	if flags.file != "" {
		selectors++
	}
	if selectors != 1 {
		return fmt.Errorf("%w: give mark references, --at or --file", ErrUsage)
	}

	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}

	ms, err := s.store.Load(s.ctx)
	if err != nil {
		return err
	}

	var targets []marks.Mark
	byRef := false
	switch {
	case flags.at != "":
		path, line, err := parseLocation([]string{flags.at})
		if err != nil {
			return err
		}
		targets = marks.At(ms, path, line)
		if len(targets) == 0 {
			return fmt.Errorf("%w: at %s", marks.ErrNoSuchMark, flags.at)
		}

	case flags.file != "":
		path, err := absPath(flags.file)
		if err != nil {
			return err
		}
		targets = marks.InFile(ms, path)
		if len(targets) == 0 {
			s.printf("no marks in %s\n", marks.DisplayPath(path, s.store.Root()))
			return nil
		}
		ok, err := confirm(cmd, flags.yes, fmt.Sprintf("Delete %d marks in %s?",
			len(targets), marks.DisplayPath(path, s.store.Root())))
		if err != nil {
			return err
		}
		if !ok {
			s.printf("nothing deleted\n")
			return nil
		}

	default:
		byRef = true
		for _, ref := range args {
			m, err := marks.Find(ms, ref)
			if err != nil {
				return err
			}
			targets = append(targets, m)
		}
	}

	// A reference names one mark, so it matches by position; the name and
	// location must still agree in case the file changed since it was read.
	removed, err := s.store.DeleteWhere(s.ctx, func(m marks.Mark) bool {
		for _, t := range targets {
			if byRef && t.Index != m.Index {
				continue
			}
			if t.Name == m.Name && t.SameLocation(m) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return fmt.Errorf("delete marks: %w", err)
	}

	s.logger.Debug("marks deleted",
		logging.FieldMarksFile, s.store.Path(),
		logging.FieldCount, removed)

	s.printf("deleted %d %s\n", removed, pluralize(removed, "mark"))
	return nil
}

// confirm asks a yes/no question on a terminal. Without a terminal the
// answer must be given up front with --yes.
func confirm(cmd *cobra.Command, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	in := cmd.InOrStdin()
	if !isTerminal(in) {
		return false, fmt.Errorf("%w: not a terminal; pass --yes to confirm", ErrUsage)
	}
	return prompt(in, cmd.ErrOrStderr(), question)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func prompt(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
