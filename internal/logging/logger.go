// Package logging sets up the process-wide structured logger.
//
// Logs go to a rotated debug.log in the log directory and are mirrored into
// an in-memory ring buffer that can be dumped when something goes wrong.
// Until Init is called (or when logging is disabled) everything is discarded.
package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component names used as the "component" attribute.
const (
	CompPreview = "preview"
	CompANSI    = "ansi"
	CompUI      = "ui"
	CompConfig  = "config"
	CompSource  = "source"
	CompCLI     = "cli"
)

// LogFileName is the name of the active log file inside Config.LogDir.
const LogFileName = "debug.log"

// Config holds logging configuration.
type Config struct {
	// LogDir is where debug.log is written (e.g. ~/.config/peek/logs)
	LogDir string

	// Level is the minimum level: "debug", "info", "warn" or "error"
	Level string

	// Format is "json" (default) or "text"
	Format string

	// MaxSizeMB is the size at which debug.log is rotated (default: 10)
	MaxSizeMB int

	// MaxBackups is how many rotated files to keep (default: 5)
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept (default: 10)
	MaxAgeDays int

	// Compress gzips rotated files
	Compress bool

	// RingBufferSize is the crash-dump buffer size in bytes (default: 1MB)
	RingBufferSize int

	// AggregateIntervalSecs is how often batched events are summarized (default: 30)
	AggregateIntervalSecs int

	// Debug forces logging on even without an explicit LogDir
	Debug bool
}

var (
	globalMu     sync.RWMutex
	globalLogger *slog.Logger
	globalRing   *RingBuffer
	globalAgg    *Aggregator
	rotator      *lumberjack.Logger
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the global logger. Calling it again replaces the previous
// setup; call Shutdown first to flush the old one.
func Init(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 10
	}
	if cfg.RingBufferSize <= 0 {
		cfg.RingBufferSize = 1024 * 1024
	}
	if cfg.AggregateIntervalSecs <= 0 {
		cfg.AggregateIntervalSecs = 30
	}

	// Nothing asked for logs: keep a tiny ring and drop events
	if !cfg.Debug && cfg.LogDir == "" {
		globalLogger = discardLogger()
		globalRing = NewRingBuffer(1024)
		globalAgg = NewAggregator(nil, cfg.AggregateIntervalSecs)
		return
	}

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, LogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	globalRing = NewRingBuffer(cfg.RingBufferSize)
	out := io.MultiWriter(rotator, globalRing)

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	globalLogger = slog.New(handler)

	globalAgg = NewAggregator(globalLogger, cfg.AggregateIntervalSecs)
	globalAgg.Start()
}

// Logger returns the global logger. Safe to call before Init.
func Logger() *slog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discardLogger()
	}
	return globalLogger
}

// ForComponent returns a sub-logger tagged with component=name.
// The logger is bound to the setup current at call time, so long-lived
// values should fetch it after Init.
func ForComponent(name string) *slog.Logger {
	return Logger().With(slog.String("component", name))
}

// Aggregate counts a high-frequency event; a summary is logged per interval.
func Aggregate(component, event string, fields ...slog.Attr) {
	globalMu.RLock()
	agg := globalAgg
	globalMu.RUnlock()
	if agg != nil {
		agg.Record(component, event, fields...)
	}
}

// DumpRingBuffer writes recent log output to path.
func DumpRingBuffer(path string) error {
	globalMu.RLock()
	ring := globalRing
	globalMu.RUnlock()
	if ring == nil {
		return nil
	}
	return ring.DumpToFile(path)
}

// Shutdown flushes pending summaries and closes the log file.
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalAgg != nil {
		globalAgg.Stop()
		globalAgg = nil
	}
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
	globalLogger = nil
	globalRing = nil
}
