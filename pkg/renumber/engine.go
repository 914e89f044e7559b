package renumber

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
)

// DefaultDebounce is how long edits must be quiet before the marks file is written.
const DefaultDebounce = 500 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce sets the quiet period before a flush.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithLogger sets the logger flush failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBackup keeps a copy of the marks file from before each write.
func WithBackup(cfg fsutil.BackupConfig) Option {
	return func(e *Engine) {
		e.backup = cfg
	}
}

// WithWriteHook registers fn to run right after the engine writes the marks
// file. Edit notifications raised while it runs are queued and applied once
// the write finishes. Hosts that echo file changes back as edit events can use
// it to deliver that echo.
func WithWriteHook(fn func()) Option {
	return func(e *Engine) {
		e.onWrite = fn
	}
}

// Engine renumbers the marks of one marks file. It is safe for concurrent
// use; flushes run on the scheduler's goroutine.
type Engine struct {
	store     *marks.Store
	debounce  time.Duration
	scheduler Scheduler
	logger    *log.Logger
	backup    fsutil.BackupConfig
	onWrite   func()

	// qmu guards writing and deferred. OnEdit checks them before taking mu
	// so an edit raised by our own write hook queues instead of deadlocking.
	qmu      sync.Mutex
	writing  bool
	deferred []Event

	mu         sync.Mutex
	pending    map[int]int
	timer      Timer
	generation uint64
	disposed   bool
}

// New creates an engine for the marks file at marksPath.
func New(marksPath string, opts ...Option) *Engine {
	e := &Engine{
		debounce:  DefaultDebounce,
		scheduler: ClockScheduler{},
		logger:    logging.Default(),
		backup:    fsutil.DefaultBackupConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.store = marks.NewStore(marksPath, marks.WithBackup(e.backup))
	return e
}

// MarksPath returns the marks file this engine maintains.
func (e *Engine) MarksPath() string {
	return e.store.Path()
}

// OnEdit folds a batch of edits into the pending line table and re-arms the
// debounce timer if any mark moved. Edits to the marks file itself are
// ignored. An edit arriving while the engine is writing is applied once the
// write completes, against the file as written.
func (e *Engine) OnEdit(ev Event) {
	if marks.SamePath(ev.Path, e.store.Path()) {
		return
	}
	if e.deferIfWriting(ev) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	e.applyLocked(ev)
}

func (e *Engine) deferIfWriting(ev Event) bool {
	e.qmu.Lock()
	defer e.qmu.Unlock()

	if !e.writing {
		return false
	}
	e.deferred = append(e.deferred, ev)
	return true
}

func (e *Engine) applyLocked(ev Event) {
	ms, err := e.store.Load(context.Background())
	if err != nil {
		e.logger.Debug("renumber: cannot read marks file", logging.FieldMarksFile, e.store.Path(), logging.FieldError, err)
		return
	}

	if len(e.pending) == 0 {
		e.pending = make(map[int]int, len(ms))
		for _, m := range ms {
			e.pending[m.Index] = m.Line
		}
	}

	var affected []int
	for _, m := range ms {
		if marks.SamePath(m.FilePath, ev.Path) {
			affected = append(affected, m.Index)
		}
	}
	if len(affected) == 0 {
		return
	}

	dirty := false
	for _, edit := range ev.Edits {
		if edit.Delta() == 0 {
			continue
		}
		for _, idx := range affected {
			line, ok := e.pending[idx]
			if !ok {
				continue
			}
			if next, moved := Shift(line, edit); moved {
				e.pending[idx] = next
				dirty = true
			}
		}
	}

	if dirty {
		e.armLocked()
	}
}

func (e *Engine) armLocked() {
	e.stopLocked()
	gen := e.generation
	e.timer = e.scheduler.AfterFunc(e.debounce, func() { e.fire(gen) })
}

// stopLocked cancels the outstanding timer. Bumping the generation makes a
// callback that already started but has not yet taken the lock a no-op.
func (e *Engine) stopLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation++
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || gen != e.generation {
		return
	}
	e.timer = nil
	e.flushLocked(context.Background())
}

// FlushNow writes any pending renumbering immediately and cancels the timer.
func (e *Engine) FlushNow() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	e.stopLocked()
	e.flushLocked(context.Background())
}

// flushLocked writes pending line numbers and clears them. Failures are
// logged and dropped; the next edit starts again from the file on disk.
func (e *Engine) flushLocked(ctx context.Context) {
	updates := e.pending
	e.pending = nil
	if len(updates) == 0 {
		return
	}

	changed, err := e.writeLocked(ctx, updates)
	if err != nil {
		e.logger.Debug("renumber: flush abandoned", logging.FieldMarksFile, e.store.Path(), logging.FieldError, err)
		return
	}
	if changed > 0 {
		e.logger.Debug("renumber: marks file updated", logging.FieldMarksFile, e.store.Path(), logging.FieldCount, changed)
	}
}

// writeLocked rewrites the digits of marks whose line differs from updates,
// reading the file fresh so the ordinals match what is on disk now. Edits
// queued during the write are applied before it returns.
func (e *Engine) writeLocked(ctx context.Context, updates map[int]int) (int, error) {
	e.qmu.Lock()
	e.writing = true
	e.qmu.Unlock()
	defer e.drainLocked()

	changed, err := e.store.SetLines(ctx, updates)
	if err != nil {
		return 0, err
	}
	// Lines just written win over anything pending for the same mark.
	for idx, line := range updates {
		if _, ok := e.pending[idx]; ok {
			e.pending[idx] = line
		}
	}
	if changed > 0 && e.onWrite != nil {
		e.onWrite()
	}
	return changed, nil
}

// drainLocked applies queued edits until none remain, then clears writing.
// Edits that arrive while draining join the queue and are picked up by the
// next pass.
func (e *Engine) drainLocked() {
	for {
		e.qmu.Lock()
		queued := e.deferred
		e.deferred = nil
		if len(queued) == 0 {
			e.writing = false
			e.qmu.Unlock()
			return
		}
		e.qmu.Unlock()

		for _, ev := range queued {
			e.applyLocked(ev)
		}
	}
}

// Pending returns a copy of the pending line table, keyed by mark index.
func (e *Engine) Pending() map[int]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[int]int, len(e.pending))
	for k, v := range e.pending {
		out[k] = v
	}
	return out
}

// Writing reports whether the engine is writing the marks file right now.
func (e *Engine) Writing() bool {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	return e.writing
}

// Dispose cancels any scheduled flush and drops pending state without
// writing. Callers wanting the pending changes kept call FlushNow first.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.pending = nil
	e.disposed = true
}
