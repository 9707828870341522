package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `# peek configuration
# Changes are picked up while peek is running.

[previewer]
# Preview commands allowed to run at the same time
max_concurrent = 3
# Computed and rendered previews kept in memory
cache_size = 100
rendered_cache_size = 25
# Kill preview commands running longer than this ("0s" = never)
timeout = "30s"
# Preview jobs started per second, 0 = unlimited
spawn_rate = 0
spawn_burst = 3
# Run previews on a pseudo-terminal so tools like ls and grep emit colors
use_pty = false
# shell = "bash"

[ui]
# "dark", "light" or "system"
theme = "dark"
poll_interval = "50ms"

[logs]
# Write debug logs to <config dir>/logs/debug.log
debug = false
level = "info"
format = "json"

# Channels: "{}" is the entry, "{N}" its Nth field split on delimiter.
# Without any [[channels]] the built-in files, dirs and git-log channels are used.
#
# [[channels]]
# name = "files"
# source = "fd -t f"
# preview = ["bat -n --color=always {}", "cat {}"]
#
# [[channels]]
# name = "grep"
# source = "rg --line-number --no-heading ."
# preview = ["bat -n --color=always --highlight-line {1} {0}"]
# delimiter = ":"
`

// WriteExample creates an example config at path unless one exists.
// It reports whether a file was written.
func WriteExample(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write example config: %w", err)
	}
	return true, nil
}
