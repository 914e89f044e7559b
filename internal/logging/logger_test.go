package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"DEBUG", log.DebugLevel},
		{"bogus", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(tt.level)
			require.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	logger.Debug("flushed", logging.FieldMarksFile, "marks.md", logging.FieldCount, 2)

	assert.Contains(t, buf.String(), "flushed")
	assert.Contains(t, buf.String(), "marks_file=marks.md")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := logging.Discard()
	assert.Equal(t, log.ErrorLevel, logger.GetLevel())
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	require.NotNil(t, logger)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

//nolint:paralleltest // mutates the package default
func TestDefaultAndSetLevel(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	fresh := logging.New("info")
	logging.SetDefault(fresh)
	assert.Same(t, fresh, logging.Default())

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())
}

func TestContext(t *testing.T) {
	t.Parallel()

	logger := logging.New("warn")
	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
	assert.NotNil(t, logging.FromContext(context.Background()))
}
