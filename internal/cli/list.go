package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/reporter"
)

func newListCommand() *cobra.Command {
	overrides := &config.Config{}

	cmd := &cobra.Command{
		Use:     "list [file]",
		Aliases: []string{"ls"},
		Short:   "List marks, grouped under the headings of the marks file",
		Long: `List every mark with its index, name and location. Headings in the marks
file become section titles. With a file argument, only marks pointing into
that file are listed.

Examples:
  markrecall list
  markrecall list src/parser.go
  markrecall list --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, overrides)
		},
	}

	formatFlag(cmd, overrides)

	return cmd
}

func runList(cmd *cobra.Command, args []string, overrides *config.Config) error {
	s, err := newSession(cmd, overrides)
	if err != nil {
		return err
	}

	content, err := s.store.Read(s.ctx)
	if err != nil {
		return err
	}

	groups := marks.Groups(content, s.store.Root())

	if len(args) == 1 {
		file, err := absPath(args[0])
		if err != nil {
			return err
		}
		groups = filterGroups(groups, func(m marks.Mark) bool {
			return marks.SamePath(m.FilePath, file)
		})
	}

	rep, err := s.reporter()
	if err != nil {
		return err
	}

	_, err = rep.Marks(s.ctx, reporter.Listing{
		Path:   s.store.Path(),
		Root:   s.store.Root(),
		Groups: groups,
	})
	return err
}

// filterGroups keeps the marks keep accepts and drops sections left empty.
func filterGroups(groups []marks.Group, keep func(marks.Mark) bool) []marks.Group {
	var out []marks.Group
	for _, g := range groups {
		var kept []marks.Mark
		for _, m := range g.Marks {
			if keep(m) {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			out = append(out, marks.Group{Section: g.Section, Marks: kept})
		}
	}
	return out
}
