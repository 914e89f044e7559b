package fix

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// LineKind indicates the type of a diff line.
type LineKind int

const (
	// LineContext is an unchanged context line.
	LineContext LineKind = iota
	// LineAdd is a line present only in the modified content.
	LineAdd
	// LineRemove is a line present only in the original content.
	LineRemove
)

// Line is a single line of a hunk.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous region of changes with surrounding context.
// Starts are 1-based, following unified diff conventions.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Diff is a line-based unified diff between two versions of a file.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

type diffOp struct {
	kind   LineKind
	text   string
	oldPos int // 0-based index into the original before this op
	newPos int
}

// GenerateDiff computes a unified diff between original and modified.
// Returns nil when the contents are identical.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if string(original) == string(modified) {
		return nil
	}

	ops := diffOps(splitLines(original), splitLines(modified))

	d := &Diff{Path: path}
	for _, op := range ops {
		switch op.kind {
		case LineAdd:
			d.Additions++
		case LineRemove:
			d.Deletions++
		case LineContext:
		}
	}
	d.Hunks = groupHunks(ops)

	return d
}

// HasChanges reports whether the diff adds or removes any line.
func (d *Diff) HasChanges() bool {
	return d != nil && (d.Additions > 0 || d.Deletions > 0)
}

// String renders the diff in unified format with file headers.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", d.Path)
	fmt.Fprintf(&sb, "+++ b/%s\n", d.Path)

	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdd:
				sb.WriteByte('+')
			case LineRemove:
				sb.WriteByte('-')
			case LineContext:
				sb.WriteByte(' ')
			}
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(content), "\n")
	return strings.Split(s, "\n")
}

// diffOps walks a longest-common-subsequence table and emits removals
// before additions within each changed region.
func diffOps(a, b []string) []diffOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]diffOp, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			ops = append(ops, diffOp{kind: LineContext, text: a[i], oldPos: i, newPos: j})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, diffOp{kind: LineRemove, text: a[i], oldPos: i, newPos: j})
			i++
		default:
			ops = append(ops, diffOp{kind: LineAdd, text: b[j], oldPos: i, newPos: j})
			j++
		}
	}

	return ops
}

func groupHunks(ops []diffOp) []Hunk {
	var hunks []Hunk

	i := 0
	for i < len(ops) {
		if ops[i].kind == LineContext {
			i++
			continue
		}

		start := max(0, i-contextLines)
		end := i
		// Extend while the next change is close enough to share context.
		for k := i; k < len(ops); k++ {
			if ops[k].kind != LineContext {
				end = k
				continue
			}
			if k-end > 2*contextLines {
				break
			}
		}
		stop := min(len(ops), end+contextLines+1)

		hunks = append(hunks, buildHunk(ops[start:stop]))
		i = stop
	}

	return hunks
}

func buildHunk(ops []diffOp) Hunk {
	h := Hunk{
		OldStart: ops[0].oldPos + 1,
		NewStart: ops[0].newPos + 1,
		Lines:    make([]Line, 0, len(ops)),
	}

	for _, op := range ops {
		h.Lines = append(h.Lines, Line{Kind: op.kind, Text: op.text})
		switch op.kind {
		case LineContext:
			h.OldCount++
			h.NewCount++
		case LineRemove:
			h.OldCount++
		case LineAdd:
			h.NewCount++
		}
	}

	// An empty side points at the line before the change.
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}

	return h
}
