package preview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sjoeboo/peek/internal/entry"
)

var placeholderRe = regexp.MustCompile(`\{(\d+)\}`)

// PlaceholderError reports a {N} placeholder the entry has no field for.
// It is a configuration mistake in the channel, not a runtime condition.
type PlaceholderError struct {
	Template string
	Entry    string
	Index    int
	Fields   int
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("preview command %q needs %d fields but entry %q has %d",
		e.Template, e.Index+1, e.Entry, e.Fields)
}

// FormatCommand expands template for e. "{}" becomes the full name and
// "{N}" the Nth field of the name split on delimiter. ok is false when the
// name is blank, in which case nothing should be run.
func FormatCommand(template, delimiter string, e entry.Entry) (cmd string, ok bool, err error) {
	if strings.TrimSpace(e.Name) == "" {
		return "", false, nil
	}
	if delimiter == "" {
		delimiter = entry.DefaultDelimiter
	}

	parts := strings.Split(e.Name, delimiter)
	cmd = strings.ReplaceAll(template, "{}", e.Name)

	cmd = placeholderRe.ReplaceAllStringFunc(cmd, func(m string) string {
		if err != nil {
			return m
		}
		idx, convErr := strconv.Atoi(m[1 : len(m)-1])
		if convErr != nil || idx >= len(parts) {
			err = &PlaceholderError{Template: template, Entry: e.Name, Index: idx, Fields: len(parts)}
			if convErr != nil {
				err = fmt.Errorf("invalid placeholder %s in %q: %w", m, template, convErr)
			}
			return m
		}
		return parts[idx]
	})
	if err != nil {
		return "", false, err
	}
	return cmd, true, nil
}
