// Package entry defines the items a channel produces and the commands used
// to preview them.
package entry

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDelimiter splits entry names into fields for {N} placeholders.
const DefaultDelimiter = " "

// Range is a half-open [Start, End) character range of matched characters.
type Range struct {
	Start uint32
	End   uint32
}

// Icon is a glyph drawn in front of an entry name.
type Icon struct {
	Glyph string
	Color string // lipgloss color, e.g. "#e44d26"
}

// Entry is one candidate a preview is computed for.
// Identity is the pair (Name, LineNumber); LineNumber 0 means unset.
type Entry struct {
	Name        string
	Value       string
	LineNumber  int
	MatchRanges []Range
	Icon        *Icon
}

// New creates an entry with the given name.
func New(name string) Entry {
	return Entry{Name: name}
}

// WithLineNumber returns a copy of e pointing at line n.
func (e Entry) WithLineNumber(n int) Entry {
	e.LineNumber = n
	return e
}

// WithMatchRanges returns a copy of e with contiguous ranges merged.
func (e Entry) WithMatchRanges(ranges []Range) Entry {
	e.MatchRanges = MergeRanges(ranges)
	return e
}

// WithIcon returns a copy of e with an icon.
func (e Entry) WithIcon(icon *Icon) Entry {
	e.Icon = icon
	return e
}

// Equal reports whether e and other identify the same entry.
func (e Entry) Equal(other Entry) bool {
	return e.Name == other.Name && e.LineNumber == other.LineNumber
}

// Key returns the identity of e as a string, suitable for map keys.
func (e Entry) Key() string {
	if e.LineNumber <= 0 {
		return e.Name
	}
	return e.Name + ":" + strconv.Itoa(e.LineNumber)
}

// StdoutRepr is what gets printed when the entry is selected. Existing paths
// containing whitespace are single-quoted; a line number is appended as ":N".
func (e Entry) StdoutRepr() string {
	repr := e.Name
	if strings.ContainsAny(repr, " \t\n\r\v\f") {
		if _, err := os.Stat(repr); err == nil {
			repr = "'" + repr + "'"
		}
	}
	if e.LineNumber > 0 {
		repr += ":" + strconv.Itoa(e.LineNumber)
	}
	return repr
}

// MergeRanges joins ranges where one ends exactly where the next starts.
// Input order is preserved; overlapping ranges are not coalesced.
func MergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	merged := make([]Range, 0, len(ranges))
	merged = append(merged, ranges[0])
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if last.End == r.Start {
			last.End = r.End
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// fileIcons maps common extensions to Nerd Font glyphs.
var fileIcons = map[string]Icon{
	".go":   {Glyph: "", Color: "#00add8"},
	".rs":   {Glyph: "", Color: "#dea584"},
	".py":   {Glyph: "", Color: "#ffbc03"},
	".js":   {Glyph: "", Color: "#cbcb41"},
	".ts":   {Glyph: "", Color: "#519aba"},
	".md":   {Glyph: "", Color: "#dddddd"},
	".toml": {Glyph: "", Color: "#9c4221"},
	".json": {Glyph: "", Color: "#cbcb41"},
	".yaml": {Glyph: "", Color: "#6d8086"},
	".yml":  {Glyph: "", Color: "#6d8086"},
	".sh":   {Glyph: "", Color: "#4d5a5e"},
	".html": {Glyph: "", Color: "#e44d26"},
	".css":  {Glyph: "", Color: "#42a5f5"},
}

var defaultFileIcon = Icon{Glyph: "", Color: "#7e8e91"}

// IconFor returns the icon for a file path based on its extension.
func IconFor(path string) *Icon {
	icon, ok := fileIcons[strings.ToLower(filepath.Ext(path))]
	if !ok {
		icon = defaultFileIcon
	}
	return &icon
}
