package renumber

import (
	"context"
	"fmt"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// Definition is where a symbol is defined in a file, as reported by a
// symbol oracle. Line is 1-based.
type Definition struct {
	Name string
	Line int
}

// Move is a symbol mark that will be, or was, relocated.
type Move struct {
	Mark marks.Mark
	To   int
}

// RefreshResult reports what a symbol refresh did.
type RefreshResult struct {
	// Moved lists marks whose line was changed.
	Moved []Move

	// Stale lists symbol marks whose symbol was not found. They are kept as is.
	Stale []marks.Mark

	// Unchanged counts symbol marks already on their definition.
	Unchanged int
}

// Relocate matches the symbol marks of filePath against defs. Each mark goes
// to the definition of its symbol closest to its current line; on a tie the
// definition listed first wins. Marks whose symbol is missing are reported
// stale and never deleted.
func Relocate(ms []marks.Mark, filePath string, defs []Definition) RefreshResult {
	var res RefreshResult

	for _, m := range ms {
		if !m.IsSymbol() || !marks.SamePath(m.FilePath, filePath) {
			continue
		}

		best, found := 0, false
		bestDist := 0
		for _, d := range defs {
			if d.Name != m.Symbol() || d.Line < 1 {
				continue
			}
			dist := abs(d.Line - m.Line)
			if !found || dist < bestDist {
				best, bestDist, found = d.Line, dist, true
			}
		}

		switch {
		case !found:
			res.Stale = append(res.Stale, m)
		case best == m.Line:
			res.Unchanged++
		default:
			res.Moved = append(res.Moved, Move{Mark: m, To: best})
		}
	}

	return res
}

// Updates converts the moves to a mark index to line table.
func (r RefreshResult) Updates() map[int]int {
	out := make(map[int]int, len(r.Moved))
	for _, mv := range r.Moved {
		out[mv.Mark.Index] = mv.To
	}
	return out
}

// PlanSymbolRefresh computes a refresh against the marks file as it is on
// disk and writes nothing. Pending renumbering is not taken into account.
func (e *Engine) PlanSymbolRefresh(ctx context.Context, filePath string, defs []Definition) (RefreshResult, error) {
	ms, err := e.store.Load(ctx)
	if err != nil {
		return RefreshResult{}, err
	}
	return Relocate(ms, filePath, defs), nil
}

// RefreshSymbolMarks moves the symbol marks of filePath onto their current
// definitions and writes the marks file right away. Pending renumbering is
// flushed first so both changes land on the same view of the file. Unlike
// debounced flushes, failures are returned to the caller.
func (e *Engine) RefreshSymbolMarks(ctx context.Context, filePath string, defs []Definition) (RefreshResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return RefreshResult{}, nil
	}

	e.stopLocked()
	e.flushLocked(ctx)

	ms, err := e.store.Load(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	res := Relocate(ms, filePath, defs)
	if len(res.Moved) == 0 {
		return res, nil
	}

	if _, err := e.writeLocked(ctx, res.Updates()); err != nil {
		return res, fmt.Errorf("refresh symbol marks: %w", err)
	}

	e.logger.Debug("renumber: symbol marks relocated",
		logging.FieldPath, filePath,
		logging.FieldCount, len(res.Moved),
		logging.FieldSymbols, len(defs))

	return res, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
