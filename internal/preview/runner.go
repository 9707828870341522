package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sjoeboo/peek/internal/platform"
)

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes a formatted preview command.
// A non-zero exit is reported in Result, not as an error; errors mean the
// command could not be run to completion (not found, killed, timed out).
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// waitDelay is how long output is drained after a command is killed.
const waitDelay = 500 * time.Millisecond

// ErrTimeout is returned when a command exceeds its time budget.
var ErrTimeout = errors.New("command timed out")

// ShellRunner runs commands through the platform shell.
type ShellRunner struct {
	// Shell overrides "sh" ("cmd" on Windows).
	Shell string
	// Dir is the working directory, the current one when empty.
	Dir string
	// Env is appended to the process environment.
	Env []string
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration
}

// shellCommand builds the exec.Cmd for command, e.g. sh -c "cat foo".
func shellCommand(ctx context.Context, shell, command string) *exec.Cmd {
	name, flag := platform.Shell()
	if shell != "" {
		name = shell
	}
	return exec.CommandContext(ctx, name, flag, command)
}

func (r *ShellRunner) command(ctx context.Context, command string) *exec.Cmd {
	cmd := shellCommand(ctx, r.Shell, command)
	// Background children may keep the pipes open after the shell is killed
	cmd.WaitDelay = waitDelay
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

// Run executes command and waits for it to finish.
func (r *ShellRunner) Run(ctx context.Context, command string) (Result, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := r.command(ctx, command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	return exitResult(ctx, res, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// exitResult turns the error of a finished command into either an exit code
// or a run failure.
func exitResult(ctx context.Context, res Result, err error) (Result, error) {
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, ErrTimeout
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("failed to run command: %w", err)
}
