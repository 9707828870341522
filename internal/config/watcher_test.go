package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SignalsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[ui]\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()
	w.Start()

	// Ensure a later mtime on coarse-grained filesystems
	time.Sleep(50 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case <-w.ReloadChannel():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a reload signal")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	w, err := NewWatcher(path)
	require.NoError(t, err, "config file may not exist yet")
	defer w.Close()
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))

	select {
	case <-w.ReloadChannel():
		t.Fatal("unexpected reload for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "gone", FileName))
	assert.Error(t, err)
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	w.Start()
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
