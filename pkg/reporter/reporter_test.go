package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/pkg/fix"
	"github.com/yaklabco/markrecall/pkg/marks"
	"github.com/yaklabco/markrecall/pkg/renumber"
	"github.com/yaklabco/markrecall/pkg/reporter"
	"github.com/yaklabco/markrecall/pkg/validate"
)

const root = "/work/project"

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(reporter.Options{Format: "xml"})
	require.Error(t, err)

	rep, err := reporter.New(reporter.Options{Format: reporter.FormatJSON, Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.IsType(t, &reporter.JSONReporter{}, rep)

	rep, err = reporter.New(reporter.Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.IsType(t, &reporter.TextReporter{}, rep)
}

func textOptions(buf *bytes.Buffer) reporter.Options {
	opts := reporter.DefaultOptions()
	opts.Writer = buf
	opts.Color = "never"
	return opts
}

func sampleListing() reporter.Listing {
	content := "# Marks\n\nsrc/a.go:3\n\n## Parser\n\n@Parse: src/p.go:10\nentry: main.go:1\n"
	return reporter.Listing{
		Path:   root + "/marks.md",
		Root:   root,
		Groups: marks.Groups(content, root),
	}
}

func TestTextReporter_Marks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTextReporter(textOptions(&buf)).Marks(context.Background(), sampleListing())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := "# Marks\n" +
		"    0  (anonymous)  src/a.go:3\n" +
		"\n" +
		"## Parser\n" +
		"    1  @Parse  src/p.go:10\n" +
		"    2  entry  main.go:1\n"
	assert.Equal(t, want, buf.String())
}

func TestTextReporter_MarksEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTextReporter(textOptions(&buf)).Marks(context.Background(), reporter.Listing{Path: "marks.md"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "No marks in marks.md\n", buf.String())
}

func TestJSONReporter_Marks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf}).Marks(context.Background(), sampleListing())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var out reporter.JSONListing
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Sections, 2)
	assert.Equal(t, "Marks", out.Sections[0].Title)
	assert.Equal(t, "Parser", out.Sections[1].Title)
	require.Len(t, out.Sections[1].Marks, 2)
	assert.Equal(t, "@Parse", out.Sections[1].Marks[0].Name)
	assert.Equal(t, root+"/src/p.go", out.Sections[1].Marks[0].FilePath)
}

func sampleReport() *validate.Report {
	return &validate.Report{
		Path:  "marks.md",
		Marks: 2,
		Diagnostics: []validate.Diagnostic{
			{Line: 3, Severity: validate.SeverityError, Message: "no colon found", Text: "oops"},
			{Line: 5, Severity: validate.SeverityWarning, Message: "line 90 is past the end", Text: "a.go:90"},
		},
	}
}

func TestTextReporter_Validation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTextReporter(textOptions(&buf)).Validation(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "marks.md (2 issues)\n")
	assert.Contains(t, out, "  marks.md:3  error  no colon found\n        oops\n")
	assert.Contains(t, out, "2 marks, 1 error, 1 warning\n")
}

func TestTextReporter_ValidationClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTextReporter(textOptions(&buf)).Validation(context.Background(), &validate.Report{Path: "marks.md", Marks: 4})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "4 marks, no problems found.\n", buf.String())
}

func TestJSONReporter_Validation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true}).Validation(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "marks.md", out["path"])
	assert.InDelta(t, 1, out["errors"], 0)
	assert.InDelta(t, 1, out["warnings"], 0)
	assert.Len(t, out["diagnostics"], 2)
}

func sampleRefresh(dryRun bool) reporter.Refresh {
	return reporter.Refresh{
		File:   root + "/src/p.go",
		Root:   root,
		DryRun: dryRun,
		Result: renumber.RefreshResult{
			Moved: []renumber.Move{{
				Mark: marks.Mark{Name: "@Parse", FilePath: root + "/src/p.go", Line: 10, Index: 1},
				To:   14,
			}},
			Stale:     []marks.Mark{{Name: "@Gone", FilePath: root + "/src/p.go", Line: 40, Index: 2}},
			Unchanged: 1,
		},
	}
}

func TestTextReporter_Refresh(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTextReporter(textOptions(&buf)).Refresh(context.Background(), sampleRefresh(true))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want := "  @Parse would move  src/p.go:10 -> 14\n" +
		"  @Gone not found  src/p.go:40\n" +
		"src/p.go: 1 would move, 1 unchanged, 1 not found\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONReporter_Refresh(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf}).Refresh(context.Background(), sampleRefresh(false))
	require.NoError(t, err)

	var out reporter.JSONRefresh
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.DryRun)
	require.Len(t, out.Moved, 1)
	assert.Equal(t, 14, out.Moved[0].To)
	assert.Equal(t, 10, out.Moved[0].Line)
	require.Len(t, out.Stale, 1)
	assert.Equal(t, 1, out.Unchanged)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := textOptions(&buf)
	diff := fix.GenerateDiff("marks.md", []byte("a: x.go:1\nb: y.go:2\n"), []byte("a: x.go:1\nb: y.go:5\n"))

	n, err := reporter.NewDiffReporter(opts).Report(context.Background(), diff, nil,
		fix.GenerateDiff("same.md", []byte("x\n"), []byte("x\n")))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "diff --git a/marks.md b/marks.md\n--- a/marks.md\n+++ b/marks.md\n")
	assert.Contains(t, out, "-b: y.go:2\n+b: y.go:5\n")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 1 deletion(-)\n")
}
