package renumber_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/internal/logging"
	"github.com/yaklabco/markrecall/pkg/fsutil"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/renumber"
)

type fixture struct {
	dir       string
	marksPath string
	sched     *manualScheduler
	engine    *renumber.Engine
}

func newFixture(t *testing.T, content string, opts ...renumber.Option) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		marksPath: filepath.Join(dir, marks.DefaultFileName),
		sched:     &manualScheduler{},
	}
	require.NoError(t, os.WriteFile(f.marksPath, []byte(content), 0o600))

	opts = append([]renumber.Option{
		renumber.WithScheduler(f.sched),
		renumber.WithLogger(logging.Discard()),
	}, opts...)
	f.engine = renumber.New(f.marksPath, opts...)
	t.Cleanup(f.engine.Dispose)

	return f
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *fixture) read(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(f.marksPath)
	require.NoError(t, err)
	return string(b)
}

func insert(start int, lines int) renumber.Edit {
	text := ""
	for range lines {
		text += "x\n"
	}
	return renumber.Edit{StartLine: start, EndLine: start, Text: text}
}

func TestEngine_ShiftsAfterDebounce(t *testing.T) {
	t.Parallel()

	const content = "# Marks\n" +
		"<!-- foo.ts:10 -->\n" +
		"foo: foo.ts:10\n" +
		"not a mark\n" +
		"other.ts:10\n"
	f := newFixture(t, content)

	f.engine.OnEdit(renumber.Event{
		Path:  f.path("foo.ts"),
		Edits: []renumber.Edit{{StartLine: 2, EndLine: 2, Text: "a\nb\nc\n"}},
	})

	assert.Equal(t, map[int]int{0: 13, 1: 10}, f.engine.Pending())
	assert.Equal(t, content, f.read(t), "nothing is written before the window elapses")
	require.Equal(t, 1, f.sched.Live())
	assert.Equal(t, renumber.DefaultDebounce, f.sched.all()[0].delay)

	require.Equal(t, 1, f.sched.Fire())

	assert.Equal(t, "# Marks\n"+
		"<!-- foo.ts:10 -->\n"+
		"foo: foo.ts:13\n"+
		"not a mark\n"+
		"other.ts:10\n", f.read(t))
	assert.Empty(t, f.engine.Pending())

	got := marks.Parse(f.read(t), f.dir)
	require.Len(t, got, 2)
	assert.Equal(t, 13, got[0].Line)
}

func TestEngine_DeletionCollapse(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:20\na.go:40\na.go:5\n")

	f.engine.OnEdit(renumber.Event{
		Path:  f.path("a.go"),
		Edits: []renumber.Edit{{StartLine: 15, EndLine: 25, Text: ""}},
	})
	f.engine.FlushNow()

	assert.Equal(t, "a.go:16\na.go:30\na.go:5\n", f.read(t))
	assert.Zero(t, f.sched.Live())
}

func TestEngine_IgnoresSameLineCountEdits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:20\n")

	f.engine.OnEdit(renumber.Event{
		Path:  f.path("a.go"),
		Edits: []renumber.Edit{{StartLine: 19, EndLine: 19, Text: "renamed"}},
	})

	assert.Zero(t, f.sched.Live())
	f.engine.FlushNow()
	assert.Equal(t, "a.go:20\n", f.read(t))
}

func TestEngine_UnaffectedFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:20\nb.go:3\n")

	f.engine.OnEdit(renumber.Event{Path: f.path("c.go"), Edits: []renumber.Edit{insert(0, 5)}})

	assert.Zero(t, f.sched.Live())
	assert.Equal(t, map[int]int{0: 20, 1: 3}, f.engine.Pending())
}

func TestEngine_IgnoresMarksFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:20\n")

	f.engine.OnEdit(renumber.Event{Path: f.marksPath, Edits: []renumber.Edit{insert(0, 5)}})

	assert.Empty(t, f.engine.Pending())
	assert.Zero(t, f.sched.Live())
}

func TestEngine_CoalescesEdits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:10\n")
	ev := func(n int) renumber.Event {
		return renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, n)}}
	}

	f.engine.OnEdit(ev(3))
	f.engine.OnEdit(ev(2))

	timers := f.sched.all()
	require.Len(t, timers, 2)
	assert.True(t, timers[0].stopped, "re-arming cancels the previous timer")
	assert.Equal(t, 1, f.sched.Live())

	// A cancelled callback that still runs must not flush.
	timers[0].fn()
	assert.Equal(t, "a.go:10\n", f.read(t))

	f.sched.Fire()
	assert.Equal(t, "a.go:15\n", f.read(t))
}

func TestEngine_MultipleEditsInOneEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:10\na.go:3\n")

	f.engine.OnEdit(renumber.Event{
		Path: f.path("a.go"),
		Edits: []renumber.Edit{
			insert(0, 1),
			{StartLine: 4, EndLine: 4, Text: "z"},
			{StartLine: 20, EndLine: 20, Text: "\n\n"},
		},
	})
	f.engine.FlushNow()

	assert.Equal(t, "a.go:11\na.go:4\n", f.read(t))
}

func TestEngine_SelfWriteIsIgnored(t *testing.T) {
	t.Parallel()

	var f *fixture
	var sawWriting bool
	f = newFixture(t, "a.go:10\n", renumber.WithWriteHook(func() {
		sawWriting = f.engine.Writing()
		// The host echoes our own write back; it must neither deadlock nor
		// re-seed the pending table.
		f.engine.OnEdit(renumber.Event{Path: f.marksPath, Edits: []renumber.Edit{insert(0, 1)}})
	}))

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 2)}})
	f.sched.Fire()

	assert.True(t, sawWriting)
	assert.False(t, f.engine.Writing())
	assert.Equal(t, "a.go:12\n", f.read(t))
	assert.Empty(t, f.engine.Pending())
	assert.Zero(t, f.sched.Live(), "no second flush is scheduled")
}

func TestEngine_EditDuringWriteIsApplied(t *testing.T) {
	t.Parallel()

	var f *fixture
	calls := 0
	f = newFixture(t, "a.go:10\n", renumber.WithWriteHook(func() {
		calls++
		if calls == 1 {
			f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
		}
	}))

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 2)}})
	f.sched.Fire()

	assert.False(t, f.engine.Writing())
	assert.Equal(t, "a.go:12\n", f.read(t))
	assert.Equal(t, map[int]int{0: 13}, f.engine.Pending())
	assert.Equal(t, 1, f.sched.Live())

	f.sched.Fire()
	assert.Equal(t, "a.go:13\n", f.read(t))
	assert.Empty(t, f.engine.Pending())
}

func TestEngine_ConcurrentEditDuringFlush(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marksPath := filepath.Join(dir, marks.DefaultFileName)
	source := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(marksPath, []byte("a.go:10\n"), 0o600))

	var engine *renumber.Engine
	var once sync.Once
	edited := make(chan struct{})
	engine = renumber.New(marksPath,
		renumber.WithDebounce(time.Millisecond),
		renumber.WithLogger(logging.Discard()),
		renumber.WithWriteHook(func() {
			once.Do(func() {
				// Another goroutine edits the source while the debounced
				// flush is still inside its write.
				var wg sync.WaitGroup
				wg.Add(1)
				go func() {
					defer wg.Done()
					engine.OnEdit(renumber.Event{Path: source, Edits: []renumber.Edit{insert(0, 5)}})
				}()
				wg.Wait()
				close(edited)
			})
		}),
	)
	t.Cleanup(engine.Dispose)

	engine.OnEdit(renumber.Event{Path: source, Edits: []renumber.Edit{insert(0, 1)}})

	select {
	case <-edited:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced flush never ran")
	}
	engine.FlushNow()

	b, err := os.ReadFile(marksPath)
	require.NoError(t, err)
	assert.Equal(t, "a.go:16\n", string(b))
}

func TestEngine_FlushReadsFresh(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:10\n")

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	require.NoError(t, os.WriteFile(f.marksPath, []byte("# added meanwhile\n  a.go:10  \n"), 0o600))
	f.sched.Fire()

	assert.Equal(t, "# added meanwhile\n  a.go:11  \n", f.read(t))
}

func TestEngine_FlushFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:10\n")

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	require.NoError(t, os.Remove(f.marksPath))
	require.NoError(t, os.Mkdir(f.marksPath, 0o700))

	assert.NotPanics(t, f.engine.FlushNow)
	assert.Empty(t, f.engine.Pending())
}

func TestEngine_MissingMarksFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	require.NoError(t, os.Remove(f.marksPath))

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	f.engine.FlushNow()

	assert.Zero(t, f.sched.Live())
	_, err := os.Stat(f.marksPath)
	assert.True(t, os.IsNotExist(err))
}

func TestEngine_Dispose(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a.go:10\n")

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	timers := f.sched.all()
	require.Len(t, timers, 1)

	f.engine.Dispose()
	assert.True(t, timers[0].stopped)
	timers[0].fn()

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	f.engine.FlushNow()

	assert.Equal(t, "a.go:10\n", f.read(t))
	assert.Empty(t, f.engine.Pending())
}

func TestEngine_Backup(t *testing.T) {
	t.Parallel()

	backup := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}
	f := newFixture(t, "a.go:10\n", renumber.WithBackup(backup))

	f.engine.OnEdit(renumber.Event{Path: f.path("a.go"), Edits: []renumber.Edit{insert(0, 1)}})
	f.engine.FlushNow()

	b, err := os.ReadFile(fsutil.BackupPath(f.marksPath, backup.Mode))
	require.NoError(t, err)
	assert.Equal(t, "a.go:10\n", string(b))
}

func TestEngine_RealClock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marksPath := filepath.Join(dir, marks.DefaultFileName)
	require.NoError(t, os.WriteFile(marksPath, []byte("a.go:10\n"), 0o600))

	written := make(chan struct{}, 1)
	engine := renumber.New(marksPath,
		renumber.WithDebounce(10*time.Millisecond),
		renumber.WithLogger(logging.Discard()),
		renumber.WithWriteHook(func() { written <- struct{}{} }),
	)
	t.Cleanup(engine.Dispose)

	engine.OnEdit(renumber.Event{Path: filepath.Join(dir, "a.go"), Edits: []renumber.Edit{insert(0, 4)}})

	select {
	case <-written:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced flush never ran")
	}

	b, err := os.ReadFile(marksPath)
	require.NoError(t, err)
	assert.Equal(t, "a.go:14\n", string(b))
}
