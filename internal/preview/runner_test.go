package preview

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestShellRunner_Success(t *testing.T) {
	skipOnWindows(t)
	r := &ShellRunner{}

	res, err := r.Run(context.Background(), "echo hello; echo oops >&2")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.Equal(t, "oops\n", string(res.Stderr))
}

func TestShellRunner_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	r := &ShellRunner{}

	res, err := r.Run(context.Background(), "echo broken >&2; exit 3")
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken\n", string(res.Stderr))
}

func TestShellRunner_DirAndEnv(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("found"), 0o644))

	r := &ShellRunner{Dir: dir, Env: []string{"PEEK_TEST_VALUE=42"}}
	res, err := r.Run(context.Background(), "cat marker; echo \" $PEEK_TEST_VALUE\"")
	require.NoError(t, err)
	assert.Equal(t, "found 42\n", string(res.Stdout))
}

func TestShellRunner_Timeout(t *testing.T) {
	skipOnWindows(t)
	r := &ShellRunner{Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := r.Run(context.Background(), "sleep 5")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestShellRunner_MissingShell(t *testing.T) {
	r := &ShellRunner{Shell: "/definitely/not/a/shell"}
	_, err := r.Run(context.Background(), "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run command")
}

func TestPTYRunner_IsATerminal(t *testing.T) {
	skipOnWindows(t)
	r := &PTYRunner{}

	res, err := r.Run(context.Background(), "if [ -t 1 ]; then echo tty; else echo pipe; fi")
	require.NoError(t, err)
	assert.Equal(t, "tty", strings.TrimSpace(string(res.Stdout)))
}

func TestPTYRunner_ExitCode(t *testing.T) {
	skipOnWindows(t)
	r := &PTYRunner{Rows: 10, Cols: 40}

	res, err := r.Run(context.Background(), "echo failing; exit 2")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, string(res.Stdout), "failing")
}
