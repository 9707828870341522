package ui

import (
	"github.com/sahilm/fuzzy"

	"github.com/sjoeboo/peek/internal/entry"
)

// entrySource adapts entries to fuzzy.Source
type entrySource []entry.Entry

func (s entrySource) String(i int) string {
	return s[i].Name
}

func (s entrySource) Len() int {
	return len(s)
}

// Filter returns the entries matching query, best match first, with their
// matched character positions recorded as ranges. An empty query returns
// every entry in source order.
func Filter(query string, entries []entry.Entry) []entry.Entry {
	if query == "" {
		out := make([]entry.Entry, len(entries))
		copy(out, entries)
		return out
	}

	matches := fuzzy.FindFrom(query, entrySource(entries))
	out := make([]entry.Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index].WithMatchRanges(byteRanges(m.Str, m.MatchedIndexes)))
	}
	return out
}

// byteRanges turns fuzzy's matched byte offsets into character ranges
// over name.
func byteRanges(name string, matched []int) []entry.Range {
	if len(matched) == 0 {
		return nil
	}
	want := make(map[int]bool, len(matched))
	for _, i := range matched {
		want[i] = true
	}

	ranges := make([]entry.Range, 0, len(matched))
	char := uint32(0)
	for off := range name {
		if want[off] {
			ranges = append(ranges, entry.Range{Start: char, End: char + 1})
		}
		char++
	}
	return ranges
}
