package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/renumber"
	"github.com/yaklabco/markrecall/pkg/symbols"
)

// trackMessage is one JSON value read by track. Saved asks for the symbol
// marks of Path to be refreshed after the edits are applied.
type trackMessage struct {
	renumber.Event
	Saved bool `json:"saved,omitempty"`
}

func newTrackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Keep mark line numbers in step with an editor's change stream",
		Long: `Read document change events as JSON values from stdin and shift the marks
below each change. The marks file is rewritten once changes have been quiet
for the configured debounce, and once more when stdin closes.

Each event names a file and the edits applied to it. Lines are 0-based and
endLine is the last original line the edit replaced:

  {"path":"src/a.go","edits":[{"startLine":2,"endLine":2,"text":"x\ny\n"}]}

Add "saved":true to refresh the @symbol marks of the file as well.`,
		Args: cobra.NoArgs,
		RunE: runTrack,
	}

	return cmd
}

func runTrack(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}

	engine := renumber.New(s.store.Path(),
		renumber.WithLogger(s.logger),
		renumber.WithBackup(backupConfig(s.cfg)),
		renumber.WithDebounce(s.cfg.Debounce.Std()),
	)
	defer engine.Dispose()

	var oracle *symbols.TreeSitter
	if s.cfg.Symbols.IsEnabled() {
		oracle = symbols.NewTreeSitter()
	}

	s.logger.Debug("tracking edits",
		logging.FieldMarksFile, s.store.Path(),
		logging.FieldDebounce, s.cfg.Debounce)

	decoder := json.NewDecoder(cmd.InOrStdin())
	events := 0
	for {
		if err := s.ctx.Err(); err != nil {
			engine.FlushNow()
			return fmt.Errorf("track: %w", err)
		}

		var msg trackMessage
		if err := decoder.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			engine.FlushNow()
			return fmt.Errorf("%w: decode event %d: %w", ErrUsage, events+1, err)
		}
		events++

		if msg.Path == "" {
			s.logger.Warn("event without path ignored", "event", events)
			continue
		}
		path, err := absPath(msg.Path)
		if err != nil {
			s.logger.Warn("event with unresolvable path ignored", "event", events, logging.FieldError, err)
			continue
		}
		msg.Path = path

		engine.OnEdit(msg.Event)

		if msg.Saved && oracle != nil {
			refreshOnSave(s, engine, oracle, path)
		}
	}

	engine.FlushNow()
	s.logger.Debug("edit stream closed", "events", events)
	return nil
}

// refreshOnSave moves the symbol marks of path. Failures are logged; a save
// must never stop tracking.
func refreshOnSave(s *session, engine *renumber.Engine, oracle symbols.Oracle, path string) {
	syms, err := symbols.LoadFile(s.ctx, oracle, path)
	if err != nil {
		if !errors.Is(err, symbols.ErrUnsupported) {
			s.logger.Warn("symbol lookup failed", logging.FieldPath, path, logging.FieldError, err)
		}
		return
	}

	res, err := engine.RefreshSymbolMarks(s.ctx, path, definitions(syms))
	if err != nil {
		s.logger.Warn("symbol refresh failed", logging.FieldPath, path, logging.FieldError, err)
		return
	}
	if len(res.Moved) > 0 {
		s.logger.Info("symbol marks moved", logging.FieldPath, path, logging.FieldCount, len(res.Moved))
	}
}
