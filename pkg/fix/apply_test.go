package fix_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/markrecall/pkg/fix"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.TextEdit
		want    string
	}{
		{
			name:    "no edits returns original",
			content: "todo: main.go:10\n",
			want:    "todo: main.go:10\n",
		},
		{
			name:    "replaces line number digits",
			content: "todo: main.go:10\n",
			edits:   []fix.TextEdit{{StartOffset: 14, EndOffset: 16, NewText: "13"}},
			want:    "todo: main.go:13\n",
		},
		{
			name:    "digit count may change",
			content: "main.go:9\n",
			edits:   []fix.TextEdit{{StartOffset: 8, EndOffset: 9, NewText: "120"}},
			want:    "main.go:120\n",
		},
		{
			name:    "unsorted edits are applied by offset",
			content: "a.go:1\nb.go:2\n",
			edits: []fix.TextEdit{
				{StartOffset: 12, EndOffset: 13, NewText: "20"},
				{StartOffset: 5, EndOffset: 6, NewText: "10"},
			},
			want: "a.go:10\nb.go:20\n",
		},
		{
			name:    "insert and delete",
			content: "one\ntwo\n",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 0, NewText: "# header\n"},
				{StartOffset: 4, EndOffset: 8, NewText: ""},
			},
			want: "# header\none\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fix.Apply([]byte(tt.content), tt.edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestApply_LeavesInputUntouched(t *testing.T) {
	t.Parallel()

	edits := []fix.TextEdit{
		{StartOffset: 4, EndOffset: 5, NewText: "X"},
		{StartOffset: 0, EndOffset: 1, NewText: "Y"},
	}
	original := append([]fix.TextEdit(nil), edits...)

	_, err := fix.Apply([]byte("abcdef"), edits)
	require.NoError(t, err)
	assert.Equal(t, original, edits)
}

func TestApply_Errors(t *testing.T) {
	t.Parallel()

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()

		_, err := fix.Apply([]byte("abc"), []fix.TextEdit{{StartOffset: 1, EndOffset: 9}})
		var verr *fix.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Error(), "exceeds content length")
	})

	t.Run("overlap", func(t *testing.T) {
		t.Parallel()

		_, err := fix.Apply([]byte("abcdef"), []fix.TextEdit{
			{StartOffset: 0, EndOffset: 3, NewText: "x"},
			{StartOffset: 2, EndOffset: 4, NewText: "y"},
		})
		var cerr *fix.ConflictError
		require.True(t, errors.As(err, &cerr))
	})

	t.Run("two inserts at one offset", func(t *testing.T) {
		t.Parallel()

		_, err := fix.Apply([]byte("abc"), []fix.TextEdit{
			{StartOffset: 1, EndOffset: 1, NewText: "x"},
			{StartOffset: 1, EndOffset: 1, NewText: "y"},
		})
		var cerr *fix.ConflictError
		require.True(t, errors.As(err, &cerr))
	})
}

func TestEditBuilder(t *testing.T) {
	t.Parallel()

	b := fix.NewEditBuilder()
	b.ReplaceRange(5, 6, "7")
	b.Insert(0, "# marks\n")
	b.Delete(7, 8)
	require.Equal(t, 3, b.Len())

	got, err := b.Apply([]byte("a.go:1\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "# marks\na.go:7\n", string(got))
}
