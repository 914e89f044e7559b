package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// BackupMode specifies how backups are stored.
type BackupMode string

const (
	// BackupModeSidecar keeps the backup next to the marks file.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is appended to the marks file name for sidecar backups.
const BackupSuffix = ".markrecall.bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig returns backups disabled, sidecar when enabled.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Mode: BackupModeSidecar}
}

// Active reports whether a write should produce a backup.
func (c BackupConfig) Active() bool {
	return c.Enabled && c.Mode != BackupModeNone
}

// BackupPath returns where the backup for path lives, or "" when mode is none.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// CreateBackup copies the current content of path to its backup location.
// Each call refreshes the backup so it always holds the state before the
// most recent write. Returns false when backups are off or path is missing.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Active() {
		return false, nil
	}

	content, info, err := ReadFile(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read original for backup: %w", err)
	}

	if err := WriteAtomic(ctx, BackupPath(path, cfg.Mode), content, info.Mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// RestoreBackup copies the backup of path back over it.
// Returns false if no backup exists.
func RestoreBackup(ctx context.Context, path string, mode BackupMode) (bool, error) {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false, nil
	}

	content, info, err := ReadFile(ctx, backupPath)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, info.Mode); err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}
	return true, nil
}

// BackupExists reports whether a backup file exists for path.
func BackupExists(path string, mode BackupMode) bool {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false
	}
	_, err := os.Stat(backupPath)
	return err == nil
}
