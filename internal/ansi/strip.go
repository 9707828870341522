package ansi

import (
	"strings"
)

// Strip removes ANSI escape codes from content, keeping line breaks.
// Terminal output often carries color codes that must not leak into entry
// names or matching.
func Strip(content string) string {
	if strings.IndexByte(content, esc) < 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	for i, l := range lines {
		if strings.IndexByte(l, esc) < 0 {
			continue
		}
		lines[i] = stripLine([]byte(l))
	}
	return strings.Join(lines, "\n")
}

func stripLine(b []byte) string {
	var out strings.Builder
	out.Grow(len(b))
	for i := 0; i < len(b); {
		if b[i] != esc {
			out.WriteByte(b[i])
			i++
			continue
		}
		if n, _, ok := scanSGR(b[i:]); ok {
			i += n
			continue
		}
		i += skipEscape(b[i:])
	}
	return out.String()
}
