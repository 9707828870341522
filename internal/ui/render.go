package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/sjoeboo/peek/internal/ansi"
	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/preview"
)

const (
	ellipsis = "…"
	tabWidth = 4
)

// renderPreviewBody turns p into the text shown in the preview viewport.
func renderPreviewBody(p *preview.Preview, width, height int) string {
	switch p.Content.Kind {
	case preview.KindEmpty:
		return ""
	case preview.KindLoading, preview.KindFileTooLarge, preview.KindNotSupported:
		return renderMeta(p.Message(), width, height)
	case preview.KindAnsiText:
		return renderText(p.Content.Text, width)
	default:
		return ""
	}
}

// renderMeta centers msg in a width x height box.
func renderMeta(msg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return metaStyle.Render(msg)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, metaStyle.Render(msg))
}

func renderText(text ansi.Text, width int) string {
	lines := make([]string, len(text.Lines))
	for i, l := range text.Lines {
		lines[i] = fitLine(l.Render(), width)
	}
	return strings.Join(lines, "\n")
}

// fitLine expands tabs, drops stray control characters and cuts the line
// to width display cells. Escape sequences survive.
func fitLine(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	s = stripControlCharsPreserveANSI(s)
	if width > 0 && xansi.StringWidth(s) > width {
		s = xansi.Truncate(s, width, "")
	}
	return s
}

// stripControlCharsPreserveANSI removes C0 control chars but keeps ESC (0x1b)
// so colored command output passes through.
func stripControlCharsPreserveANSI(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != 0x1b {
			return -1
		}
		return r
	}, s)
}

// renderTitle draws the preview title with its icon, shrunk with an
// ellipsis to fit width.
func renderTitle(p *preview.Preview, width int) string {
	if p.Title == "" || width <= 0 {
		return ""
	}
	style := titleStyle
	if p.Stale {
		style = titleStaleStyle
	}

	prefix := ""
	if p.Icon != nil {
		prefix = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Icon.Color)).Render(p.Icon.Glyph) + " "
	}
	room := width - xansi.StringWidth(prefix)
	if room <= 0 {
		return prefix
	}
	return prefix + style.Render(shrink(p.Title, room))
}

// shrink cuts s to width cells, ending in an ellipsis when cut.
func shrink(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// renderEntryLine draws one result row. Matched characters are
// highlighted and names wider than width are cut with an ellipsis.
func renderEntryLine(e entry.Entry, selected bool, width int) string {
	base, match := resultStyle, matchStyle
	marker := "  "
	if selected {
		base, match = resultSelStyle, matchSelStyle
		marker = cursorStyle.Render("▌") + resultSelStyle.Render(" ")
	}

	var b strings.Builder
	b.WriteString(marker)
	used := 2
	if e.Icon != nil {
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Icon.Color))
		if selected {
			icon = icon.Background(colors.Surface)
		}
		b.WriteString(icon.Render(e.Icon.Glyph))
		b.WriteString(base.Render(" "))
		used += runewidth.StringWidth(e.Icon.Glyph) + 1
	}

	room := width - used
	name := e.Name
	cut := false
	if room > 0 && runewidth.StringWidth(name) > room {
		name = runewidth.Truncate(name, room-1, "")
		cut = true
	}

	var run strings.Builder
	inMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inMatch {
			b.WriteString(match.Render(run.String()))
		} else {
			b.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}

	char := uint32(0)
	for _, r := range name {
		m := inRanges(char, e.MatchRanges)
		if m != inMatch {
			flush()
			inMatch = m
		}
		run.WriteRune(r)
		char++
	}
	flush()
	if cut {
		b.WriteString(base.Render(ellipsis))
		used += runewidth.StringWidth(name) + 1
	} else {
		used += runewidth.StringWidth(name)
	}

	if selected && width > used {
		b.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return b.String()
}

func inRanges(i uint32, ranges []entry.Range) bool {
	for _, r := range ranges {
		if i >= r.Start && i < r.End {
			return true
		}
	}
	return false
}

// renderHelpLine draws the key hints shown under the results.
func renderHelpLine(width int) string {
	hints := [][2]string{
		{"enter", "select"},
		{"ctrl+f", "next preview"},
		{"ctrl+u/d", "scroll"},
		{"ctrl+r", "refresh"},
		{"esc", "quit"},
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, helpKeyStyle.Render(h[0])+" "+helpDescStyle.Render(h[1]))
	}
	line := strings.Join(parts, "  ")
	if width > 0 && xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, ellipsis)
	}
	return line
}
