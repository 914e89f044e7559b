package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/symbols"
)

type addFlags struct {
	name      string
	prepend   bool
	anonymous bool
}

func newAddCommand() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <path:line | path line>",
		Short: "Add a mark",
		Long: `Add a mark for a line of a source file. Without --name, a mark on the line
where a function, method or type is defined is named @symbol so refresh can
move it back onto the definition later. Otherwise the mark is anonymous.

The marks file is created from a commented template when it does not exist.

Examples:
  markrecall add src/parser.go:42
  markrecall add src/parser.go 42 --name entry
  markrecall add main.go:1 --prepend`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "name for the mark")
	cmd.Flags().BoolVarP(&flags.prepend, "prepend", "p", false, "add at the top of the marks file instead of the bottom")
	cmd.Flags().BoolVar(&flags.anonymous, "anonymous", false, "never derive an @symbol name")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string, flags *addFlags) error {
	path, line, err := parseLocation(args)
	if err != nil {
		return err
	}

	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}

	name := flags.name
	if name == "" && !flags.anonymous && s.cfg.Symbols.IsEnabled() {
		name = symbolNameAt(s.ctx, path, line)
	}

	m := marks.Mark{Name: name, FilePath: path, Line: line}
	if err := s.store.Add(s.ctx, m, flags.prepend); err != nil {
		return fmt.Errorf("add mark: %w", err)
	}

	s.logger.Debug("mark added",
		logging.FieldMarksFile, s.store.Path(),
		logging.FieldName, name,
		logging.FieldPath, path,
		logging.FieldLine, line)

	s.printf("%s\n", marks.Format(m, s.store.Root()))
	return nil
}

// symbolNameAt names a mark after the symbol defined on line, or returns ""
// when the language is unsupported or nothing is defined there.
func symbolNameAt(ctx context.Context, path string, line int) string {
	logger := logging.FromContext(ctx)

	syms, err := symbols.LoadFile(ctx, symbols.NewTreeSitter(), path)
	if err != nil {
		if !errors.Is(err, symbols.ErrUnsupported) {
			logger.Debug("symbol lookup failed", logging.FieldPath, path, logging.FieldError, err)
		}
		return ""
	}

	sym, ok := symbols.At(syms, line)
	if !ok {
		return ""
	}
	return marks.SymbolName(sym.Name)
}
