package cli_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/internal/cli"
)

const goSource = `package main

import "fmt"

func Hello() {
	fmt.Println("hello")
}

func main() {
	Hello()
}
`

// project is a temporary directory holding a marks file, a config file and
// one Go source file.
type project struct {
	dir    string
	marks  string
	config string
	source string
}

func newProject(t *testing.T, marksContent string) *project {
	t.Helper()

	dir := t.TempDir()
	p := &project{
		dir:    dir,
		marks:  filepath.Join(dir, "marks.md"),
		config: filepath.Join(dir, ".markrecall.yml"),
		source: filepath.Join(dir, "main.go"),
	}

	require.NoError(t, os.WriteFile(p.config, []byte("symbols:\n  enabled: true\n"), 0o644))
	require.NoError(t, os.WriteFile(p.source, []byte(goSource), 0o644))
	if marksContent != "" {
		require.NoError(t, os.WriteFile(p.marks, []byte(marksContent), 0o644))
	}
	return p
}

// run executes markrecall against the project and returns its stdout.
func (p *project) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--marks", p.marks, "--config", p.config, "--color", "never"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (p *project) readMarks(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(p.marks)
	require.NoError(t, err)
	return string(data)
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test-version", Commit: "test-commit", Date: "test-date"})

	require.NotNil(t, cmd)
	assert.Equal(t, "markrecall", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"debug", "config", "color", "marks"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})

	expected := []string{
		"list", "add", "delete", "recall", "next", "prev",
		"refresh", "track", "validate", "undo", "init", "version",
	}

	for _, name := range expected {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, "subcommand %s", name) {
			assert.Equal(t, name, sub.Name())
		}
	}
}

func TestRootHelpListsEnvironment(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Environment:")
	assert.Contains(t, out.String(), "MARKRECALL_MARKS_FILE")
}

func TestSubcommandHelpShowsFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"add", "--help"})

	require.NoError(t, cmd.Execute())
	help := out.String()
	assert.Contains(t, help, "-n, --name string")
	assert.Contains(t, help, "Global Flags:")
	assert.Contains(t, help, `(default "auto")`)
	assert.NotContains(t, help, "Environment:")
}

func TestAddAndList(t *testing.T) {
	t.Parallel()

	p := newProject(t, "")

	out, err := p.run(t, "", "add", p.source+":5")
	require.NoError(t, err)
	assert.Equal(t, "@Hello: main.go:5\n", out)

	out, err = p.run(t, "", "add", p.source, "10", "--name", "entry")
	require.NoError(t, err)
	assert.Equal(t, "entry: main.go:10\n", out)

	out, err = p.run(t, "", "add", p.source+":2")
	require.NoError(t, err)
	assert.Equal(t, "main.go:2\n", out)

	content := p.readMarks(t)
	assert.True(t, strings.HasPrefix(content, "# Mark and Recall File"))
	assert.True(t, strings.HasSuffix(content, "@Hello: main.go:5\nentry: main.go:10\nmain.go:2\n"))

	out, err = p.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "@Hello")
	assert.Contains(t, out, "entry")
	assert.Contains(t, out, "(anonymous)")
	assert.Contains(t, out, "main.go:10")
}

func TestAddRejectsDuplicateLocation(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:3\n")

	_, err := p.run(t, "", "add", p.source+":3")
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
	assert.Equal(t, "main.go:3\n", p.readMarks(t))
}

func TestAddInvalidLocation(t *testing.T) {
	t.Parallel()

	p := newProject(t, "")

	_, err := p.run(t, "", "add", p.source+":zero")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestListJSON(t *testing.T) {
	t.Parallel()

	p := newProject(t, "# Work\nentry: main.go:10\n")

	out, err := p.run(t, "", "list", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 1`)
	assert.Contains(t, out, `"Work"`)
}

func TestRecall(t *testing.T) {
	t.Parallel()

	p := newProject(t, "entry: main.go:10\nmain.go:2\n")

	out, err := p.run(t, "", "recall", "entry")
	require.NoError(t, err)
	assert.Equal(t, p.source+":10\n", out)

	out, err = p.run(t, "", "recall", "1", "--relative")
	require.NoError(t, err)
	assert.Equal(t, "main.go:2\n", out)

	_, err = p.run(t, "", "recall", "7")
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
}

func TestNextAndPrevWrapAround(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:2\nmain.go:9\n")

	out, err := p.run(t, "", "next", p.source+":5", "--relative")
	require.NoError(t, err)
	assert.Equal(t, "main.go:9\n", out)

	out, err = p.run(t, "", "next", p.source+":9", "--relative")
	require.NoError(t, err)
	assert.Equal(t, "main.go:2\n", out)

	out, err = p.run(t, "", "prev", p.source+":2", "--relative")
	require.NoError(t, err)
	assert.Equal(t, "main.go:9\n", out)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	p := newProject(t, "# notes\nentry: main.go:10\nmain.go:2\nother.go:4\n")

	out, err := p.run(t, "", "delete", "entry")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 mark\n", out)
	assert.Equal(t, "# notes\nmain.go:2\nother.go:4\n", p.readMarks(t))

	out, err = p.run(t, "", "delete", "--file", p.source, "--yes")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 mark\n", out)
	assert.Equal(t, "# notes\nother.go:4\n", p.readMarks(t))

	_, err = p.run(t, "", "delete", "0", "--file", p.source)
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestDeleteByIndexKeepsDuplicates(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:2\nmain.go:2\nnamed: main.go:2\n")

	out, err := p.run(t, "", "delete", "0")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 mark\n", out)
	assert.Equal(t, "main.go:2\nnamed: main.go:2\n", p.readMarks(t))

	out, err = p.run(t, "", "delete", "named")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 mark\n", out)
	assert.Equal(t, "main.go:2\n", p.readMarks(t))
}

func TestDeleteFileNeedsTerminalOrYes(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:2\nother.go:4\n")

	_, err := p.run(t, "y\n", "delete", "--file", p.source)
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	assert.Equal(t, "main.go:2\nother.go:4\n", p.readMarks(t))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:5\n")

	out, err := p.run(t, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "no problems found")

	require.NoError(t, os.WriteFile(p.marks, []byte("main.go:5\nmissing.go:3\n"), 0o644))

	out, err = p.run(t, "", "validate")
	require.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
	assert.Contains(t, out, "file not found")
}

func TestTrackShiftsMarks(t *testing.T) {
	t.Parallel()

	p := newProject(t, "# marks\nentry: main.go:5\nmain.go:2\nother.go:5\n")

	events := `{"path":"` + p.source + `","edits":[{"startLine":2,"endLine":2,"text":"a\nb\n"}]}
{"path":"","edits":[]}
`
	_, err := p.run(t, events, "track")
	require.NoError(t, err)
	assert.Equal(t, "# marks\nentry: main.go:7\nmain.go:2\nother.go:5\n", p.readMarks(t))
}

func TestTrackSkipsBadEventsAndKeepsGoing(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:5\n")

	events := `{"path":"","edits":[{"startLine":0,"endLine":0,"text":"x\n"}]}
{"path":"` + p.source + `","edits":[{"startLine":0,"endLine":0,"text":"a\nb\nc\n"}]}
`
	_, err := p.run(t, events, "track")
	require.NoError(t, err)
	assert.Equal(t, "main.go:8\n", p.readMarks(t))
}

func TestTrackRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:5\n")

	_, err := p.run(t, "{not json", "track")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	assert.Equal(t, "main.go:5\n", p.readMarks(t))
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	p := newProject(t, "@Hello: main.go:3\n@main: main.go:9\n@Gone: main.go:1\n")

	out, err := p.run(t, "", "refresh", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would move")
	assert.Contains(t, out, "-@Hello: main.go:3")
	assert.Contains(t, out, "+@Hello: main.go:5")
	assert.Equal(t, "@Hello: main.go:3\n@main: main.go:9\n@Gone: main.go:1\n", p.readMarks(t))

	out, err = p.run(t, "", "refresh", p.source)
	require.NoError(t, err)
	assert.Contains(t, out, "not found")
	assert.Equal(t, "@Hello: main.go:5\n@main: main.go:9\n@Gone: main.go:1\n", p.readMarks(t))
}

func TestUndo(t *testing.T) {
	t.Parallel()

	p := newProject(t, "main.go:5\n")

	_, err := p.run(t, "", "undo")
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))

	_, err = p.run(t, "", "add", p.source+":2")
	require.NoError(t, err)
	assert.Equal(t, "main.go:5\nmain.go:2\n", p.readMarks(t))

	out, err := p.run(t, "", "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "restored")
	assert.Equal(t, "main.go:5\n", p.readMarks(t))
}

func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, ".markrecall.yml")

	run := func(args ...string) error {
		cmd := cli.NewRootCommand(cli.BuildInfo{})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append([]string{"init", "--output", output}, args...))
		return cmd.Execute()
	}

	require.NoError(t, run("--marks-file"))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "marks_file")

	marksData, err := os.ReadFile(filepath.Join(dir, "marks.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(marksData), "# Mark and Recall File"))

	require.Error(t, run())
	require.NoError(t, run("--force"))

	err = run("--format", "toml")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}
