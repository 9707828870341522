package entry

// PreviewCommand is a shell template run against an entry. "{}" expands to
// the entry name and "{N}" to the Nth field of the name split on Delimiter.
type PreviewCommand struct {
	Template  string
	Delimiter string
}

// NewPreviewCommand returns a command using DefaultDelimiter when delimiter
// is empty.
func NewPreviewCommand(template, delimiter string) PreviewCommand {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return PreviewCommand{Template: template, Delimiter: delimiter}
}

// IsZero reports whether the command has no template.
func (c PreviewCommand) IsZero() bool {
	return c.Template == ""
}
