// Package config loads peek's TOML configuration and channel definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/preview"
)

// FileName is the config file inside Dir().
const FileName = "config.toml"

// DirEnv overrides the config directory.
const DirEnv = "PEEK_CONFIG_DIR"

// Config is the user configuration in TOML format
type Config struct {
	// Previewer controls how preview commands are scheduled
	Previewer PreviewerSettings `toml:"previewer"`

	// UI controls the interactive finder
	UI UISettings `toml:"ui"`

	// Logs controls debug logging
	Logs LogSettings `toml:"logs"`

	// Channels are the configured entry sources. When empty, the built-in
	// "files" channel is used.
	Channels []Channel `toml:"channels"`
}

// PreviewerSettings defines the preview pipeline configuration
type PreviewerSettings struct {
	// MaxConcurrent is the number of preview commands run at once (default: 3)
	MaxConcurrent int `toml:"max_concurrent"`

	// CacheSize is the number of computed previews kept (default: 100)
	CacheSize int `toml:"cache_size"`

	// RenderedCacheSize is the number of rendered previews kept (default: 25)
	RenderedCacheSize int `toml:"rendered_cache_size"`

	// Timeout kills preview commands running longer than this.
	// "0s" disables the limit (default: 30s)
	Timeout Duration `toml:"timeout"`

	// SpawnRate caps preview jobs started per second, 0 = unlimited (default: 0)
	SpawnRate float64 `toml:"spawn_rate"`

	// SpawnBurst is the number of jobs allowed in a burst when SpawnRate is set (default: 3)
	SpawnBurst int `toml:"spawn_burst"`

	// UsePTY runs preview commands on a pseudo-terminal so they emit colors (default: false)
	UsePTY bool `toml:"use_pty"`

	// Shell overrides the shell used to run commands (default: sh, cmd on Windows)
	Shell string `toml:"shell"`
}

// UISettings defines the finder's look and feel
type UISettings struct {
	// Theme is "dark", "light" or "system" (default: dark)
	Theme string `toml:"theme"`

	// PollInterval is how often the UI checks for new entries and previews (default: 50ms)
	PollInterval Duration `toml:"poll_interval"`
}

// LogSettings defines debug logging
type LogSettings struct {
	// Debug enables logging to <config dir>/logs/debug.log (default: false)
	Debug bool `toml:"debug"`

	// Level is "debug", "info", "warn" or "error" (default: info)
	Level string `toml:"level"`

	// Format is "json" or "text" (default: json)
	Format string `toml:"format"`

	// MaxSizeMB rotates the log at this size (default: 10)
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is the number of rotated logs kept (default: 5)
	MaxBackups int `toml:"max_backups"`

	// MaxAgeDays removes rotated logs older than this (default: 10)
	MaxAgeDays int `toml:"max_age_days"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Previewer: PreviewerSettings{
			MaxConcurrent:     preview.DefaultMaxConcurrent,
			CacheSize:         preview.DefaultCacheSize,
			RenderedCacheSize: preview.DefaultRenderedCacheSize,
			Timeout:           Duration{30 * time.Second},
			SpawnBurst:        3,
		},
		UI: UISettings{
			Theme:        ThemeDark,
			PollInterval: Duration{50 * time.Millisecond},
		},
		Logs: LogSettings{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 10,
		},
	}
}

// Dir returns the config directory: $PEEK_CONFIG_DIR, or ~/.config/peek.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("failed to locate config dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "peek"), nil
}

// Path returns the path of the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LogDir returns where debug logs are written.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// Load reads the config file at the default path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path on top of the defaults. A missing file yields the
// defaults; a malformed or invalid one is an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i := range cfg.Channels {
		cfg.Channels[i].applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	p := c.Previewer
	switch {
	case p.MaxConcurrent < 1:
		return fmt.Errorf("previewer.max_concurrent must be at least 1, got %d", p.MaxConcurrent)
	case p.CacheSize < 1:
		return fmt.Errorf("previewer.cache_size must be at least 1, got %d", p.CacheSize)
	case p.RenderedCacheSize < 1:
		return fmt.Errorf("previewer.rendered_cache_size must be at least 1, got %d", p.RenderedCacheSize)
	case p.Timeout.Duration < 0:
		return fmt.Errorf("previewer.timeout must not be negative")
	case p.SpawnRate < 0:
		return fmt.Errorf("previewer.spawn_rate must not be negative")
	}

	if !validTheme(c.UI.Theme) {
		return fmt.Errorf("ui.theme must be %q, %q or %q, got %q", ThemeDark, ThemeLight, ThemeSystem, c.UI.Theme)
	}
	if c.UI.PollInterval.Duration <= 0 {
		return fmt.Errorf("ui.poll_interval must be positive")
	}

	seen := make(map[string]bool)
	for i, ch := range c.Channels {
		if err := ch.Validate(); err != nil {
			return fmt.Errorf("channels[%d]: %w", i, err)
		}
		if seen[ch.Name] {
			return fmt.Errorf("channels[%d]: duplicate channel %q", i, ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

// AllChannels returns the configured channels, or the built-in ones when
// none are configured.
func (c *Config) AllChannels() []Channel {
	if len(c.Channels) == 0 {
		return BuiltinChannels()
	}
	return c.Channels
}

// ErrUnknownChannel is returned by Channel for names not configured.
var ErrUnknownChannel = errors.New("unknown channel")

// Channel looks up a channel by name. An empty name returns the first one.
func (c *Config) Channel(name string) (Channel, error) {
	channels := c.AllChannels()
	if name == "" {
		return channels[0], nil
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch, nil
		}
	}
	return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// PreviewerOptions translates the settings into preview.Previewer options.
func (c *Config) PreviewerOptions() []preview.Option {
	p := c.Previewer
	shell := preview.ShellRunner{Shell: p.Shell}
	var runner preview.Runner = &shell
	if p.UsePTY {
		runner = &preview.PTYRunner{ShellRunner: shell}
	}
	return []preview.Option{
		preview.WithRunner(runner),
		preview.WithMaxConcurrent(p.MaxConcurrent),
		preview.WithCacheSize(p.CacheSize),
		preview.WithTimeout(p.Timeout.Duration),
		preview.WithSpawnRate(p.SpawnRate, p.SpawnBurst),
	}
}

// PreviewCommands returns every preview command of ch with its delimiter.
func (ch Channel) PreviewCommands() []entry.PreviewCommand {
	cmds := make([]entry.PreviewCommand, len(ch.Preview))
	for i, tmpl := range ch.Preview {
		cmds[i] = entry.NewPreviewCommand(tmpl, ch.Delimiter)
	}
	return cmds
}
