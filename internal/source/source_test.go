package source

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(s *Source) []string {
	entries, _ := s.Snapshot()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func waitDone(t *testing.T, s *Source) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("source did not finish")
	}
}

func TestFromReader(t *testing.T) {
	input := "main.go\r\n\x1b[32mgreen.txt\x1b[0m\n\n   \nlast"
	s := FromReader(strings.NewReader(input))
	waitDone(t, s)

	require.NoError(t, s.Err())
	assert.True(t, s.Finished())
	assert.Equal(t, []string{"main.go", "green.txt", "last"}, names(s))
	assert.Equal(t, 3, s.Len())
}

func TestFromLines_Icons(t *testing.T) {
	s := FromLines([]string{"a.go", "b.md"}, WithIcons())
	entries, version := s.Snapshot()
	require.Len(t, entries, 2)
	assert.EqualValues(t, 2, version)
	require.NotNil(t, entries[0].Icon)
	assert.Equal(t, "#00add8", entries[0].Icon.Color)

	plain := FromLines([]string{"a.go"})
	entries, _ = plain.Snapshot()
	assert.Nil(t, entries[0].Icon)
}

func TestSnapshot_VersionChangesOnAdd(t *testing.T) {
	s := newSource()
	_, v0 := s.Snapshot()
	s.add("one")
	snap, v1 := s.Snapshot()
	assert.NotEqual(t, v0, v1)

	s.add("two")
	assert.Len(t, snap, 1, "earlier snapshots are not affected")
	assert.Equal(t, 2, s.Len())
}

func TestFromCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	s := FromCommand(context.Background(), "", "printf 'b\\na\\n'")
	waitDone(t, s)

	require.NoError(t, s.Err())
	assert.Equal(t, []string{"b", "a"}, names(s))
}

func TestFromCommand_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	s := FromCommand(context.Background(), "", "echo partial; exit 4")
	waitDone(t, s)

	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "exit status 4")
	assert.Equal(t, []string{"partial"}, names(s), "lines read before the failure are kept")
}

func TestFromCommand_Cancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := FromCommand(ctx, "", "echo first; exec sleep 10")

	require.Eventually(t, func() bool { return s.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	waitDone(t, s)
	assert.NoError(t, s.Err(), "cancellation is not a failure")
}

func TestFromCommand_BadShell(t *testing.T) {
	s := FromCommand(context.Background(), "/no/such/shell", "true")
	waitDone(t, s)
	assert.Error(t, s.Err())
}
