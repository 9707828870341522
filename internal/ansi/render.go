package ansi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TerminalColor converts c for lipgloss. Default colors map to NoColor.
func (c Color) TerminalColor() lipgloss.TerminalColor {
	switch c.Kind {
	case ColorBasic, ColorIndexed:
		return lipgloss.Color(strconv.Itoa(int(c.Index)))
	case ColorRGB:
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	default:
		return lipgloss.NoColor{}
	}
}

// Lipgloss returns the lipgloss equivalent of s.
// Conceal has no lipgloss attribute; Render blanks concealed text instead.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if !s.Fg.IsDefault() {
		st = st.Foreground(s.Fg.TerminalColor())
	}
	if !s.Bg.IsDefault() {
		st = st.Background(s.Bg.TerminalColor())
	}
	if s.Has(Bold) {
		st = st.Bold(true)
	}
	if s.Has(Faint) {
		st = st.Faint(true)
	}
	if s.Has(Italic) {
		st = st.Italic(true)
	}
	if s.Has(Underline) {
		st = st.Underline(true)
	}
	if s.Mods&(SlowBlink|RapidBlink) != 0 {
		st = st.Blink(true)
	}
	if s.Has(Reverse) {
		st = st.Reverse(true)
	}
	if s.Has(CrossedOut) {
		st = st.Strikethrough(true)
	}
	return st
}

// Render re-encodes the line for the current lipgloss color profile.
func (l Line) Render() string {
	var b strings.Builder
	for _, span := range l.Spans {
		content := span.Content
		if span.Style.Has(Conceal) {
			content = strings.Repeat(" ", runewidth.StringWidth(content))
		}
		if span.Style.IsZero() {
			b.WriteString(content)
			continue
		}
		b.WriteString(span.Style.Lipgloss().Render(content))
	}
	return b.String()
}

// Render re-encodes every line, joined with "\n".
func (t Text) Render() string {
	parts := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		parts[i] = l.Render()
	}
	return strings.Join(parts, "\n")
}
