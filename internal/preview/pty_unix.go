//go:build !windows
// +build !windows

package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// Default pseudo-terminal size for PTYRunner.
const (
	DefaultPTYRows = 24
	DefaultPTYCols = 80
)

// PTYRunner runs commands attached to a pseudo-terminal so tools that only
// colorize when writing to a TTY (ls, grep, git) emit their escape codes.
// Stdout and stderr share the terminal and both land in Result.Stdout.
type PTYRunner struct {
	ShellRunner
	Rows uint16
	Cols uint16
}

// Run executes command on a fresh pty and waits for it to finish.
func (r *PTYRunner) Run(ctx context.Context, command string) (Result, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	rows, cols := r.Rows, r.Cols
	if rows == 0 {
		rows = DefaultPTYRows
	}
	if cols == 0 {
		cols = DefaultPTYCols
	}

	cmd := r.command(ctx, command)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return Result{}, fmt.Errorf("failed to start pty: %w", err)
	}
	defer ptmx.Close()

	var (
		out     bytes.Buffer
		copyErr error
		copied  = make(chan struct{})
	)
	go func() {
		defer close(copied)
		_, copyErr = io.Copy(&out, ptmx)
	}()

	err = cmd.Wait()
	select {
	case <-copied:
	case <-time.After(waitDelay):
		// A background child still holds the terminal
		_ = ptmx.Close()
		<-copied
	}

	// Linux reports EIO on the master once the child side is closed.
	if copyErr != nil && !errors.Is(copyErr, syscall.EIO) && !errors.Is(copyErr, os.ErrClosed) {
		return Result{Stdout: out.Bytes()}, fmt.Errorf("failed to read pty: %w", copyErr)
	}
	return exitResult(ctx, Result{Stdout: out.Bytes()}, err)
}
