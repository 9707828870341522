package ansi

import (
	"strings"
	"testing"
)

// generateANSIContent creates a test string with many ANSI codes
// to simulate the output of a colorizing preview command
func generateANSIContent(lineCount int) string {
	var b strings.Builder
	for i := 0; i < lineCount; i++ {
		b.WriteString("\x1b[38;5;140m") // Set foreground color
		b.WriteString("Line ")
		b.WriteString("\x1b[1m") // Bold
		b.WriteString("content")
		b.WriteString("\x1b[0m") // Reset
		b.WriteString(" with ")
		b.WriteString("\x1b[32m") // Green
		b.WriteString("colorized")
		b.WriteString("\x1b[0m")
		b.WriteString(" text\n")
	}
	return b.String()
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no ANSI codes",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "simple color code",
			input:    "\x1b[31mred\x1b[0m",
			expected: "red",
		},
		{
			name:     "256 color code",
			input:    "\x1b[38;5;140mfoo\x1b[0m bar",
			expected: "foo bar",
		},
		{
			name:     "cursor movement",
			input:    "\x1b[2Amove up\x1b[2Bmove down",
			expected: "move upmove down",
		},
		{
			name:     "OSC sequence (window title)",
			input:    "\x1b]0;Title\x07content",
			expected: "content",
		},
		{
			name:     "multiline with codes",
			input:    "\x1b[32mline1\x1b[0m\n\x1b[33mline2\x1b[0m",
			expected: "line1\nline2",
		},
		{
			name:     "keeps carriage returns",
			input:    "\x1b[1ma\x1b[0m\r\nb",
			expected: "a\r\nb",
		},
		{
			name:     "garbled sequence",
			input:    "x\x1b[garbage",
			expected: "x",
		},
		{
			name:     "save and restore cursor",
			input:    "\x1b[sDownloading 50%\x1b[uDone",
			expected: "Downloading 50%Done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Strip(tt.input)
			if result != tt.expected {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// Strip and Parse must agree on what is visible.
func TestStrip_MatchesParse(t *testing.T) {
	content := generateANSIContent(20)
	if got, want := Strip(content), ParseString(content).String(); strings.TrimSuffix(got, "\n") != want {
		t.Errorf("Strip and Parse disagree:\n%q\n%q", got, want)
	}
}

func BenchmarkStrip_Small(b *testing.B) {
	content := generateANSIContent(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Strip(content)
	}
}

// BenchmarkStrip_Large simulates a long file preview
func BenchmarkStrip_Large(b *testing.B) {
	content := generateANSIContent(2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Strip(content)
	}
}
