// Package preview computes, caches and serves previews for entries.
//
// The Previewer never blocks its caller: a request either hits the cache or
// returns the last known preview while a bounded number of background jobs
// run the preview command.
package preview

import (
	"github.com/sjoeboo/peek/internal/ansi"
	"github.com/sjoeboo/peek/internal/entry"
)

// Kind identifies which variant a Content holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindLoading
	KindFileTooLarge
	KindNotSupported
	KindAnsiText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindLoading:
		return "loading"
	case KindFileTooLarge:
		return "file_too_large"
	case KindNotSupported:
		return "not_supported"
	case KindAnsiText:
		return "ansi_text"
	default:
		return "unknown"
	}
}

// Messages shown for the meta content kinds.
const (
	LoadingMsg       = "Loading..."
	FileTooLargeMsg  = "File too large"
	NotSupportedMsg  = "Preview for this file type is not supported"
	errorPreviewHead = "error running command: "
)

// Content is the body of a preview. Raw and Text are only set for
// KindAnsiText.
type Content struct {
	Kind Kind
	Raw  string
	Text ansi.Text
}

// AnsiText parses raw command output into a content value.
func AnsiText(raw string) Content {
	return Content{Kind: KindAnsiText, Raw: raw, Text: ansi.ParseString(raw)}
}

// Preview is an immutable preview result. Values are shared by pointer
// between the cache and the UI and must not be modified after creation.
type Preview struct {
	Title   string
	Content Content
	Icon    *entry.Icon
	// Stale marks a preview that belongs to some other entry and is only
	// shown while the real one is being computed.
	Stale bool
}

// Empty returns a preview with no content.
func Empty() *Preview {
	return &Preview{Content: Content{Kind: KindEmpty}}
}

// Loading returns a placeholder preview for title.
func Loading(title string) *Preview {
	return &Preview{Title: title, Content: Content{Kind: KindLoading}}
}

// FileTooLarge returns a meta preview for oversized files.
func FileTooLarge(title string) *Preview {
	return &Preview{Title: title, Content: Content{Kind: KindFileTooLarge}}
}

// NotSupported returns a meta preview for unsupported file types.
func NotSupported(title string) *Preview {
	return &Preview{Title: title, Content: Content{Kind: KindNotSupported}}
}

// FromOutput builds a text preview from raw command output.
func FromOutput(e entry.Entry, raw string) *Preview {
	return &Preview{Title: e.Name, Content: AnsiText(raw), Icon: e.Icon}
}

// AsStale returns a copy of p marked stale. p itself is left untouched.
func (p *Preview) AsStale() *Preview {
	cp := *p
	cp.Stale = true
	return &cp
}

// TotalLines is the number of lines of text content, used for scroll
// bounds. Meta contents have no lines.
func (p *Preview) TotalLines() int {
	if p.Content.Kind != KindAnsiText {
		return 0
	}
	return p.Content.Text.Len()
}

// Message returns the text shown for meta contents, or "" for text and
// empty previews.
func (p *Preview) Message() string {
	switch p.Content.Kind {
	case KindLoading:
		return LoadingMsg
	case KindFileTooLarge:
		return FileTooLargeMsg
	case KindNotSupported:
		return NotSupportedMsg
	default:
		return ""
	}
}
