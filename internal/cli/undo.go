package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

func newUndoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the marks file from its backup",
		Long: `Put back the marks file as it was before the last change markrecall made.
A backup is kept next to the marks file while backups are enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}

			path := s.store.Path()
			restored, err := fsutil.RestoreBackup(s.ctx, path, fsutil.BackupModeSidecar)
			if err != nil {
				return fmt.Errorf("undo: %w", err)
			}
			if !restored {
				return fmt.Errorf("%w: no backup for %s", fsutil.ErrNotFound, path)
			}

			s.logger.Debug("marks file restored",
				logging.FieldMarksFile, path,
				logging.FieldPath, fsutil.BackupPath(path, fsutil.BackupModeSidecar))

			s.printf("restored %s from backup\n", marks.DisplayPath(path, s.load.ProjectDir))
			return nil
		},
	}

	return cmd
}
