// Package ansi turns raw terminal output into styled lines.
//
// Only Select Graphic Rendition (SGR) sequences are interpreted. Every other
// escape sequence (cursor movement, erase, OSC titles and hyperlinks, charset
// selection) is recognized and dropped so it never shows up as text.
package ansi

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	esc = 0x1b
	bel = 0x07

	// maxParam caps SGR parameter values so long digit runs cannot overflow.
	maxParam = 1 << 16
)

// Span is a run of text sharing one style.
type Span struct {
	Content string
	Style   Style
}

// Line is an ordered list of spans.
type Line struct {
	Spans []Span
}

// String returns the visible text of the line.
func (l Line) String() string {
	if len(l.Spans) == 1 {
		return l.Spans[0].Content
	}
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Content)
	}
	return b.String()
}

// Width returns the display width of the line in terminal cells.
func (l Line) Width() int {
	return runewidth.StringWidth(l.String())
}

// Text is the parsed form of a byte stream.
type Text struct {
	Lines []Line
}

// Len returns the number of lines.
func (t Text) Len() int {
	return len(t.Lines)
}

// String returns the visible text, lines joined with "\n".
func (t Text) String() string {
	parts := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// ParseString is Parse for string input.
func ParseString(s string) Text {
	return Parse([]byte(s))
}

// Parse splits b into lines of styled spans. It never fails: unknown or
// truncated escape sequences are dropped and invalid UTF-8 is replaced with
// U+FFFD. Style carries over from one line to the next.
func Parse(b []byte) Text {
	var (
		lines []Line
		style Style
	)

	for len(b) > 0 {
		var raw []byte
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			raw, b = b[:i], b[i+1:]
		} else {
			raw, b = b, nil
		}
		raw = bytes.TrimSuffix(raw, []byte{'\r'})

		var line Line
		line, style = parseLine(raw, style)
		lines = append(lines, line)
	}

	return Text{Lines: lines}
}

// parseLine scans one line, returning its spans and the style in effect at
// its end.
func parseLine(b []byte, style Style) (Line, Style) {
	var spans []Span

	for i := 0; i < len(b); {
		if b[i] == esc {
			if n, params, ok := scanSGR(b[i:]); ok {
				if next, valid := applySGR(style, params); valid {
					style = next
				}
				i += n
				continue
			}
			i += skipEscape(b[i:])
			continue
		}

		end := bytes.IndexByte(b[i:], esc)
		if end < 0 {
			end = len(b)
		} else {
			end += i
		}
		spans = appendSpan(spans, decode(b[i:end]), style)
		i = end
	}

	return Line{Spans: spans}, style
}

// appendSpan adds text, merging with the previous span when the style matches.
func appendSpan(spans []Span, text string, style Style) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Style == style {
		spans[n-1].Content += text
		return spans
	}
	return append(spans, Span{Content: text, Style: style})
}

func decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// scanSGR matches ESC '[' [0-9;]* 'm' at the start of b and returns the
// sequence length and its parameters. Empty parameters count as 0.
func scanSGR(b []byte) (int, []int, bool) {
	if len(b) < 3 || b[0] != esc || b[1] != '[' {
		return 0, nil, false
	}

	var (
		params  []int
		cur     int
		hasBody bool
	)
	for i := 2; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			if cur < maxParam {
				cur = cur*10 + int(c-'0')
			}
			hasBody = true
		case c == ';':
			params = append(params, cur)
			cur = 0
			hasBody = true
		case c == 'm':
			if hasBody {
				params = append(params, cur)
			}
			return i + 1, params, true
		default:
			return 0, nil, false
		}
	}
	return 0, nil, false
}

// skipEscape returns how many bytes of the escape sequence at the start of b
// to discard. It always returns at least 1 so the scanner makes progress.
func skipEscape(b []byte) int {
	if len(b) < 2 {
		return 1
	}
	switch c := b[1]; {
	case c == '[':
		return skipCSI(b)
	case c == ']', c == 'P', c == 'X', c == '^', c == '_':
		return skipString(b)
	case c >= 0x20 && c <= 0x2f:
		// nF escape, e.g. ESC ( B
		if len(b) >= 3 && b[2] >= 0x30 && b[2] <= 0x7e {
			return 3
		}
		return 2
	case c >= 0x30 && c <= 0x7e:
		return 2
	default:
		return 1
	}
}

// skipCSI discards ESC '[' parameters, intermediates and the final byte.
// An unterminated sequence runs to the end of the line.
func skipCSI(b []byte) int {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2f {
		i++
	}
	if i >= len(b) {
		return len(b)
	}

	c := b[i]
	if c < 0x40 || c > 0x7e {
		// Malformed: drop what was read and resume at this byte.
		return i
	}

	// A bare lowercase "final" followed by more letters is garbage text
	// glued to a stray ESC '[', not a control function. Save and restore
	// cursor take no parameters and are commonly followed by text.
	if i == 2 && isLower(c) && !isBareCSI(c) && i+1 < len(b) && isLetter(b[i+1]) {
		for i < len(b) && isLetter(b[i]) {
			i++
		}
		return i
	}
	return i + 1
}

// skipString discards OSC/DCS-style strings terminated by BEL or ST (ESC \).
func skipString(b []byte) int {
	for i := 2; i < len(b); i++ {
		switch b[i] {
		case bel:
			return i + 1
		case esc:
			if i+1 < len(b) && b[i+1] == '\\' {
				return i + 2
			}
		}
	}
	return len(b)
}

// isBareCSI reports whether c ends a lowercase CSI function that is valid
// without parameters: ESC[s saves the cursor, ESC[u restores it.
func isBareCSI(c byte) bool {
	return c == 's' || c == 'u'
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isLetter(c byte) bool {
	return isLower(c) || (c >= 'A' && c <= 'Z')
}
