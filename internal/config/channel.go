package config

import (
	"errors"
	"strings"

	"github.com/sjoeboo/peek/internal/entry"
)

// Channel is a named entry source with the commands that preview its
// entries.
type Channel struct {
	// Name identifies the channel (--channel NAME)
	Name string `toml:"name"`

	// Source is a shell command whose output lines become entries
	Source string `toml:"source"`

	// Preview lists preview command templates; ctrl+f cycles through them.
	// "{}" is the entry, "{N}" its Nth field split on Delimiter.
	Preview []string `toml:"preview"`

	// Delimiter splits entries into fields (default: " ")
	Delimiter string `toml:"delimiter"`
}

func (ch *Channel) applyDefaults() {
	if ch.Delimiter == "" {
		ch.Delimiter = entry.DefaultDelimiter
	}
}

// Validate checks the channel has what it needs to run.
func (ch Channel) Validate() error {
	if strings.TrimSpace(ch.Name) == "" {
		return errors.New("channel name is required")
	}
	if strings.TrimSpace(ch.Source) == "" {
		return errors.New("channel " + ch.Name + ": source is required")
	}
	for _, p := range ch.Preview {
		if strings.TrimSpace(p) == "" {
			return errors.New("channel " + ch.Name + ": empty preview command")
		}
	}
	return nil
}

// BuiltinChannels returns the channels available without a config file.
func BuiltinChannels() []Channel {
	return []Channel{
		{
			Name:      "files",
			Source:    "find . -type f -not -path '*/.git/*'",
			Preview:   []string{"bat -n --color=always {}", "cat {}"},
			Delimiter: entry.DefaultDelimiter,
		},
		{
			Name:      "dirs",
			Source:    "find . -type d -not -path '*/.git*'",
			Preview:   []string{"ls -la --color=always {}"},
			Delimiter: entry.DefaultDelimiter,
		},
		{
			Name:      "git-log",
			Source:    "git log --oneline --color=never",
			Preview:   []string{"git show --color=always {0}"},
			Delimiter: entry.DefaultDelimiter,
		},
	}
}

// Cycler walks a channel's preview commands, wrapping around at the end.
type Cycler struct {
	cmds []entry.PreviewCommand
	pos  int
}

// NewCycler starts at the first command of ch.
func NewCycler(ch Channel) *Cycler {
	return &Cycler{cmds: ch.PreviewCommands()}
}

// Current returns the selected command. ok is false when the channel has
// no preview commands.
func (c *Cycler) Current() (entry.PreviewCommand, bool) {
	if len(c.cmds) == 0 {
		return entry.PreviewCommand{}, false
	}
	return c.cmds[c.pos], true
}

// Next selects the following command and returns it.
func (c *Cycler) Next() (entry.PreviewCommand, bool) {
	if len(c.cmds) == 0 {
		return entry.PreviewCommand{}, false
	}
	c.pos = (c.pos + 1) % len(c.cmds)
	return c.cmds[c.pos], true
}

// Len returns the number of commands.
func (c *Cycler) Len() int {
	return len(c.cmds)
}
