package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/pkg/config"
	"github.com/yaklabco/markrecall/pkg/validate"
)

func newValidateCommand() *cobra.Command {
	overrides := &config.Config{}

	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"check"},
		Short:   "Report lines of the marks file that are not valid marks",
		Long: `Check every line of the marks file. Lines that look like marks but do not
parse, marks pointing at missing files and repeated locations are errors.
Marks past the end of their file are warnings.

The exit status is 1 when any error is found.

Examples:
  markrecall validate
  markrecall validate --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, overrides)
			if err != nil {
				return err
			}

			report, err := validate.File(s.ctx, s.store)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			rep, err := s.reporter()
			if err != nil {
				return err
			}

			errs, err := rep.Validation(s.ctx, report)
			if err != nil {
				return fmt.Errorf("report validation: %w", err)
			}
			if errs > 0 {
				return ErrValidationFailed
			}
			return nil
		},
	}

	formatFlag(cmd, overrides)

	return cmd
}
