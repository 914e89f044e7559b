package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/pkg/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(dir, "marks.md")
		writeFile(t, path, "a.go:1\n")

		content, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "a.go:1\n", string(content))
		require.NotNil(t, info)
		assert.Equal(t, path, info.Path)
		assert.Equal(t, int64(7), info.Size)
		assert.Equal(t, os.FileMode(0o600), info.Mode.Perm())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := fsutil.ReadFile(ctx, filepath.Join(dir, "missing.md"))
		require.ErrorIs(t, err, fsutil.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, _, err := fsutil.ReadFile(ctx, dir)
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("missing reads as empty", func(t *testing.T) {
		t.Parallel()
		content, info, err := fsutil.ReadFileOrEmpty(ctx, filepath.Join(dir, "nope.md"))
		require.NoError(t, err)
		assert.Empty(t, content)
		assert.Nil(t, info)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := fsutil.ReadFile(cctx, dir)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckModified(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "marks.md")
		writeFile(t, path, "a.go:1\n")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("same size different content", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "marks.md")
		writeFile(t, path, "a.go:1\n")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		writeFile(t, path, "a.go:2\n")
		require.NoError(t, os.Chtimes(path, info.ModTime, info.ModTime))

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("newer mod time", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "marks.md")
		writeFile(t, path, "a.go:1\n")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		later := info.ModTime.Add(time.Second)
		require.NoError(t, os.Chtimes(path, later, later))

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "marks.md")
		writeFile(t, path, "a.go:1\n")
		_, info, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModified(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()
		_, err := fsutil.CheckModified(ctx, nil)
		require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})
}
