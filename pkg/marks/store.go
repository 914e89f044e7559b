package marks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/markrecall/pkg/fsutil"
)

// DefaultFileName is the marks file name used when none is configured.
const DefaultFileName = "marks.md"

// Template seeds a marks file that does not exist yet.
const Template = `# Mark and Recall File
#
# Named marks (name: path:line) - user-specified
# mymark: src/utils.ts:10
#
# Symbol marks (@symbol: path:line) - auto-detected from code
# @parseConfig: src/utils.ts:42
#
# Anonymous marks (path:line)
# src/helpers.ts:18

`

// ErrConcurrentEdit is returned when the marks file changed on disk while an
// update was being prepared.
var ErrConcurrentEdit = errors.New("marks file changed while updating")

// Store is a marks file on disk. Every call re-reads the file; nothing is
// cached between calls.
type Store struct {
	path   string
	root   string
	backup fsutil.BackupConfig
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBackup makes every write refresh a backup of the previous content.
func WithBackup(cfg fsutil.BackupConfig) StoreOption {
	return func(s *Store) {
		s.backup = cfg
	}
}

// NewStore returns a Store for the marks file at path. The directory holding
// the file is the project root relative paths resolve against.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		root:   filepath.Dir(path),
		backup: fsutil.DefaultBackupConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolvePath returns the marks file location for a configured name: absolute
// names are used as-is, relative ones are placed in projectDir.
func ResolvePath(name, projectDir string) string {
	if name == "" {
		name = DefaultFileName
	}
	return Resolve(name, projectDir)
}

// Path returns the marks file path.
func (s *Store) Path() string { return s.path }

// Root returns the project root.
func (s *Store) Root() string { return s.root }

// Read returns the raw content. A missing file reads as "".
func (s *Store) Read(ctx context.Context) (string, error) {
	content, _, err := fsutil.ReadFileOrEmpty(ctx, s.path)
	if err != nil {
		return "", fmt.Errorf("read marks file: %w", err)
	}
	return string(content), nil
}

// Load parses the marks file. A missing file yields no marks.
func (s *Store) Load(ctx context.Context) ([]Mark, error) {
	content, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(content, s.root), nil
}

// Update reads the file, passes its content to fn and writes the result back
// atomically if it differs. The write is refused with ErrConcurrentEdit if
// the file changed after it was read. Returns whether the file was written.
func (s *Store) Update(ctx context.Context, fn func(content string) (string, error)) (bool, error) {
	raw, info, err := fsutil.ReadFileOrEmpty(ctx, s.path)
	if err != nil {
		return false, fmt.Errorf("read marks file: %w", err)
	}

	next, err := fn(string(raw))
	if err != nil {
		return false, err
	}
	if next == string(raw) {
		return false, nil
	}

	mode := fsutil.DefaultFileMode
	if info != nil {
		modified, err := fsutil.CheckModified(ctx, info)
		if err != nil {
			return false, fmt.Errorf("check marks file: %w", err)
		}
		if modified {
			return false, fmt.Errorf("%w: %s", ErrConcurrentEdit, s.path)
		}
		mode = info.Mode.Perm()
	}

	if _, err := fsutil.CreateBackup(ctx, s.path, s.backup); err != nil {
		return false, fmt.Errorf("backup marks file: %w", err)
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, s.path, []byte(next), mode)
	if err != nil {
		return false, fmt.Errorf("write marks file: %w", err)
	}
	return written, nil
}

// Add writes m to the marks file, at the top when prepend is set, otherwise
// at the bottom. It refuses a second mark at the same file and line. An empty
// or missing file is first seeded with Template.
func (s *Store) Add(ctx context.Context, m Mark, prepend bool) error {
	if m.Name != "" {
		if err := ValidateName(m.Name); err != nil {
			return err
		}
	}
	if m.Line < 1 {
		return fmt.Errorf("invalid line %d: lines start at 1", m.Line)
	}

	_, err := s.Update(ctx, func(content string) (string, error) {
		for _, existing := range Parse(content, s.root) {
			if existing.SameLocation(m) {
				return "", fmt.Errorf("%w: %s", ErrDuplicate, Format(Mark{FilePath: m.FilePath, Line: m.Line}, s.root))
			}
		}
		if content == "" {
			content = Template
		}
		entry := Format(m, s.root)
		if prepend {
			return Prepend(content, entry), nil
		}
		return Append(content, entry), nil
	})
	return err
}

// DeleteWhere removes every mark match reports true for.
func (s *Store) DeleteWhere(ctx context.Context, match func(Mark) bool) (int, error) {
	var removed int
	_, err := s.Update(ctx, func(content string) (string, error) {
		var indices []int
		for _, m := range Parse(content, s.root) {
			if match(m) {
				indices = append(indices, m.Index)
			}
		}
		var out string
		out, removed = DeleteIndices(content, indices...)
		return out, nil
	})
	return removed, err
}

// SetLines rewrites the line numbers of marks by index.
func (s *Store) SetLines(ctx context.Context, updates map[int]int) (int, error) {
	var changed int
	_, err := s.Update(ctx, func(content string) (string, error) {
		var out string
		out, changed = Rewrite(content, updates)
		return out, nil
	})
	return changed, err
}
