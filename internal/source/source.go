// Package source streams entries from a channel's source command or stdin.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/sjoeboo/peek/internal/ansi"
	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/logging"
	"github.com/sjoeboo/peek/internal/platform"
)

// maxLineSize bounds a single source line.
const maxLineSize = 1024 * 1024

// Source collects entries in the background. Snapshot can be called at any
// time while lines are still arriving.
type Source struct {
	mu      sync.RWMutex
	entries []entry.Entry
	version uint64
	done    bool
	err     error

	icons bool
	doneC chan struct{}
	log   *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithIcons attaches a file-type icon to every entry.
func WithIcons() Option {
	return func(s *Source) { s.icons = true }
}

func newSource(opts ...Option) *Source {
	s := &Source{
		doneC: make(chan struct{}),
		log:   logging.ForComponent(logging.CompSource),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromReader reads entries from r until EOF.
func FromReader(r io.Reader, opts ...Option) *Source {
	s := newSource(opts...)
	go func() {
		s.finish(s.consume(r))
	}()
	return s
}

// FromCommand runs command through the shell and reads entries from its
// stdout. Cancelling ctx stops the command.
func FromCommand(ctx context.Context, shell, command string, opts ...Option) *Source {
	s := newSource(opts...)

	name, flag := platform.Shell()
	if shell != "" {
		name = shell
	}
	cmd := exec.CommandContext(ctx, name, flag, command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.finish(fmt.Errorf("failed to open source output: %w", err))
		return s
	}
	if err := cmd.Start(); err != nil {
		s.finish(fmt.Errorf("failed to start source command: %w", err))
		return s
	}
	s.log.Debug("source_started", slog.String("command", command))

	go func() {
		readErr := s.consume(stdout)
		waitErr := cmd.Wait()
		switch {
		case readErr != nil:
			s.finish(readErr)
		case ctx.Err() != nil:
			s.finish(nil)
		case waitErr != nil:
			s.finish(fmt.Errorf("source command %q: %w", command, waitErr))
		default:
			s.finish(nil)
		}
	}()
	return s
}

// FromLines builds a finished source from fixed lines.
func FromLines(lines []string, opts ...Option) *Source {
	s := newSource(opts...)
	for _, l := range lines {
		s.add(l)
	}
	s.finish(nil)
	return s
}

func (s *Source) consume(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		s.add(sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to read source: %w", err)
	}
	return nil
}

// add appends one raw line. Escape codes and trailing CRs are removed and
// blank lines skipped.
func (s *Source) add(line string) {
	line = strings.TrimRight(ansi.Strip(line), "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	e := entry.New(line)
	if s.icons {
		e = e.WithIcon(entry.IconFor(line))
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.version++
	s.mu.Unlock()
}

func (s *Source) finish(err error) {
	s.mu.Lock()
	s.done = true
	s.err = err
	n := len(s.entries)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("source_failed", slog.String("error", err.Error()))
	} else {
		s.log.Debug("source_done", slog.Int("entries", n))
	}
	close(s.doneC)
}

// Snapshot returns the entries read so far and a version that changes
// whenever entries are added. The slice must not be modified.
func (s *Source) Snapshot() ([]entry.Entry, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[:len(s.entries):len(s.entries)], s.version
}

// Len returns the number of entries read so far.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Done is closed once the source has no more entries.
func (s *Source) Done() <-chan struct{} {
	return s.doneC
}

// Finished reports whether the source is exhausted.
func (s *Source) Finished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Err returns why the source stopped early, if it did.
func (s *Source) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// StdinIsPiped reports whether stdin is a pipe or file rather than a
// terminal, i.e. whether entries should be read from it.
func StdinIsPiped() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}
