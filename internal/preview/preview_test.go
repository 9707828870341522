package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sjoeboo/peek/internal/entry"
)

func TestPreview_AsStale(t *testing.T) {
	p := FromOutput(entry.New("a"), "line1\nline2\n")
	stale := p.AsStale()

	assert.True(t, stale.Stale)
	assert.False(t, p.Stale, "original is not modified")
	assert.Equal(t, p.Content, stale.Content)
	assert.NotSame(t, p, stale)
}

func TestPreview_TotalLines(t *testing.T) {
	assert.Equal(t, 2, FromOutput(entry.New("a"), "line1\nline2\n").TotalLines())
	assert.Equal(t, 0, FromOutput(entry.New("a"), "").TotalLines())
	assert.Equal(t, 0, Empty().TotalLines())
	assert.Equal(t, 0, Loading("a").TotalLines())
	assert.Equal(t, 0, FileTooLarge("a").TotalLines())
}

func TestPreview_Message(t *testing.T) {
	assert.Equal(t, LoadingMsg, Loading("a").Message())
	assert.Equal(t, FileTooLargeMsg, FileTooLarge("a").Message())
	assert.Equal(t, NotSupportedMsg, NotSupported("a").Message())
	assert.Empty(t, Empty().Message())
	assert.Empty(t, FromOutput(entry.New("a"), "x").Message())
}

func TestFromOutput_KeepsIcon(t *testing.T) {
	e := entry.New("main.go").WithIcon(entry.IconFor("main.go"))
	p := FromOutput(e, "\x1b[31mpackage\x1b[0m main")

	assert.Equal(t, "main.go", p.Title)
	assert.Same(t, e.Icon, p.Icon)
	assert.Equal(t, KindAnsiText, p.Content.Kind)
	assert.Equal(t, "package main", p.Content.Text.String())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ansi_text", KindAnsiText.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
