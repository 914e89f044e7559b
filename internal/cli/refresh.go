package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/fix"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/renumber"
	"github.com/yaklabco/markrecall/pkg/reporter"
	"github.com/yaklabco/markrecall/pkg/symbols"
)

type refreshFlags struct {
	dryRun bool
}

func newRefreshCommand() *cobra.Command {
	overrides := &config.Config{}
	flags := &refreshFlags{}

	cmd := &cobra.Command{
		Use:   "refresh [file...]",
		Short: "Move @symbol marks back onto their definitions",
		Long: `Look up the definitions in each file with tree-sitter and move every
@symbol mark pointing into it to the nearest definition of that symbol.
Marks whose symbol no longer exists are reported and left alone.

Without arguments, every file that has a symbol mark is refreshed.

Examples:
  markrecall refresh src/parser.go
  markrecall refresh --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, args, overrides, flags)
		},
	}

	formatFlag(cmd, overrides)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the changes as a diff without writing")

	return cmd
}

func runRefresh(cmd *cobra.Command, args []string, overrides *config.Config, flags *refreshFlags) error {
	s, err := newSession(cmd, overrides)
	if err != nil {
		return err
	}
	if !s.cfg.Symbols.IsEnabled() {
		return fmt.Errorf("%w: symbol lookups are disabled in the configuration", ErrUsage)
	}

	files, err := refreshTargets(s, args)
	if err != nil {
		return err
	}

	rep, err := s.reporter()
	if err != nil {
		return err
	}

	engine := renumber.New(s.store.Path(),
		renumber.WithLogger(s.logger),
		renumber.WithBackup(backupConfig(s.cfg)),
		renumber.WithDebounce(s.cfg.Debounce.Std()),
	)
	defer engine.Dispose()

	oracle := symbols.NewTreeSitter()
	planned := make(map[int]int)

	for _, file := range files {
		syms, err := symbols.LoadFile(s.ctx, oracle, file)
		if err != nil {
			if errors.Is(err, symbols.ErrUnsupported) {
				s.logger.Warn("no grammar for file; skipped", logging.FieldPath, file)
				continue
			}
			return fmt.Errorf("read symbols: %w", err)
		}
		defs := definitions(syms)

		var res renumber.RefreshResult
		if flags.dryRun {
			res, err = engine.PlanSymbolRefresh(s.ctx, file, defs)
			for idx, line := range res.Updates() {
				planned[idx] = line
			}
		} else {
			res, err = engine.RefreshSymbolMarks(s.ctx, file, defs)
		}
		if err != nil {
			return err
		}

		if _, err := rep.Refresh(s.ctx, reporter.Refresh{
			File:   file,
			Root:   s.store.Root(),
			DryRun: flags.dryRun,
			Result: res,
		}); err != nil {
			return fmt.Errorf("report refresh: %w", err)
		}
	}

	if flags.dryRun && len(planned) > 0 && s.cfg.Format != config.FormatJSON {
		before, err := s.store.Read(s.ctx)
		if err != nil {
			return err
		}
		after, _ := marks.Rewrite(before, planned)

		diffs := reporter.NewDiffReporter(reporter.Options{
			Writer:      cmd.OutOrStdout(),
			Color:       string(s.cfg.Color),
			ShowSummary: true,
			Root:        s.store.Root(),
		})
		if _, err := diffs.Report(s.ctx, fix.GenerateDiff(s.store.Path(), []byte(before), []byte(after))); err != nil {
			return fmt.Errorf("report diff: %w", err)
		}
	}

	return nil
}

// refreshTargets resolves the file arguments, or collects every file with a
// symbol mark when none are given.
func refreshTargets(s *session, args []string) ([]string, error) {
	if len(args) > 0 {
		files := make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := absPath(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, abs)
		}
		return files, nil
	}

	ms, err := s.store.Load(s.ctx)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	for _, m := range ms {
		if m.IsSymbol() && !seen[m.FilePath] {
			seen[m.FilePath] = true
			files = append(files, m.FilePath)
		}
	}
	return files, nil
}

func definitions(syms []symbols.Symbol) []renumber.Definition {
	defs := make([]renumber.Definition, 0, len(syms))
	for _, sym := range syms {
		defs = append(defs, renumber.Definition{Name: sym.Name, Line: sym.Line})
	}
	return defs
}
