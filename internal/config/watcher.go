package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sjoeboo/peek/internal/logging"
)

// debounceInterval batches the burst of events editors emit on save.
const debounceInterval = 100 * time.Millisecond

// Watcher signals when the config file changes on disk.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	log       *slog.Logger

	mu      sync.Mutex
	lastMod time.Time
}

// resolvePath makes path absolute and follows symlinks so it can be compared
// with event names.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// NewWatcher watches path. The file does not need to exist yet, but its
// directory does.
func NewWatcher(path string) (*Watcher, error) {
	dir := resolvePath(filepath.Dir(path))
	resolved := filepath.Join(dir, filepath.Base(path))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so atomic renames are seen
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	cw := &Watcher{
		watcher:  w,
		path:     resolved,
		reloadCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
		log:      logging.ForComponent(logging.CompConfig),
	}
	if info, err := os.Stat(resolved); err == nil {
		cw.lastMod = info.ModTime()
	}
	return cw, nil
}

// Start begins watching in the background.
func (cw *Watcher) Start() {
	go cw.loop()
}

func (cw *Watcher) loop() {
	debounce := time.NewTimer(0)
	debounce.Stop()

	for {
		select {
		case <-cw.closeCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if resolvePath(event.Name) != cw.path || event.Has(fsnotify.Remove) {
				continue
			}
			debounce.Reset(debounceInterval)

		case <-debounce.C:
			cw.checkAndNotify()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config_watch_error", slog.String("error", err.Error()))
		}
	}
}

func (cw *Watcher) checkAndNotify() {
	info, err := os.Stat(cw.path)
	if err != nil {
		// Temporarily gone during an atomic rename
		return
	}

	cw.mu.Lock()
	changed := info.ModTime().After(cw.lastMod)
	if changed {
		cw.lastMod = info.ModTime()
	}
	cw.mu.Unlock()
	if !changed {
		return
	}

	cw.log.Info("config_changed", slog.String("path", cw.path))
	select {
	case cw.reloadCh <- struct{}{}:
	default:
	}
}

// ReloadChannel receives a value after each change to the file.
func (cw *Watcher) ReloadChannel() <-chan struct{} {
	return cw.reloadCh
}

// Close stops the watcher. Safe to call more than once.
func (cw *Watcher) Close() error {
	var err error
	cw.closeOnce.Do(func() {
		close(cw.closeCh)
		err = cw.watcher.Close()
	})
	return err
}
