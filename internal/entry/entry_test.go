package entry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRanges(t *testing.T) {
	tests := []struct {
		name     string
		input    []Range
		expected []Range
	}{
		{name: "empty", input: nil, expected: nil},
		{name: "single", input: []Range{{1, 3}}, expected: []Range{{1, 3}}},
		{
			name:     "contiguous",
			input:    []Range{{1, 2}, {2, 3}, {3, 4}, {4, 5}},
			expected: []Range{{1, 5}},
		},
		{
			name:     "non contiguous",
			input:    []Range{{1, 2}, {3, 4}, {5, 6}},
			expected: []Range{{1, 2}, {3, 4}, {5, 6}},
		},
		{
			name:     "mixed",
			input:    []Range{{0, 1}, {1, 2}, {4, 5}, {5, 7}},
			expected: []Range{{0, 2}, {4, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeRanges(tt.input))
		})
	}
}

func TestMergeRanges_DoesNotMutateInput(t *testing.T) {
	in := []Range{{1, 2}, {2, 3}}
	MergeRanges(in)
	assert.Equal(t, []Range{{1, 2}, {2, 3}}, in)
}

func TestEntry_Identity(t *testing.T) {
	a := New("main.go")
	b := New("main.go").WithIcon(IconFor("main.go"))
	assert.True(t, a.Equal(b), "icon does not affect identity")
	assert.Equal(t, a.Key(), b.Key())

	c := a.WithLineNumber(12)
	assert.False(t, a.Equal(c))
	assert.Equal(t, "main.go:12", c.Key())
	assert.True(t, c.Equal(New("main.go").WithLineNumber(12)))
}

func TestEntry_StdoutRepr(t *testing.T) {
	dir := t.TempDir()
	spaced := filepath.Join(dir, "my file.txt")
	require.NoError(t, os.WriteFile(spaced, []byte("x"), 0o644))

	assert.Equal(t, "'"+spaced+"'", New(spaced).StdoutRepr())
	assert.Equal(t, "'"+spaced+"':3", New(spaced).WithLineNumber(3).StdoutRepr())

	// Not an existing path: left alone
	assert.Equal(t, "no such file", New("no such file").StdoutRepr())
	assert.Equal(t, "plain:7", New("plain").WithLineNumber(7).StdoutRepr())
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "#00add8", IconFor("cmd/main.go").Color)
	assert.Equal(t, IconFor("README.MD").Glyph, IconFor("notes.md").Glyph)
	assert.Equal(t, defaultFileIcon, *IconFor("Makefile"))
}

func TestNewPreviewCommand(t *testing.T) {
	cmd := NewPreviewCommand("cat {}", "")
	assert.Equal(t, DefaultDelimiter, cmd.Delimiter)
	assert.False(t, cmd.IsZero())

	cmd = NewPreviewCommand("cut -d: -f1 {0}", ":")
	assert.Equal(t, ":", cmd.Delimiter)
	assert.True(t, PreviewCommand{}.IsZero())
}
