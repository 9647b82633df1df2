// Package watch re-runs a callback when the sources of a project change.
// Bursts of file events are debounced into one run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period after the last event before a run.
const DefaultInterval = 100 * time.Millisecond

// Config configures a watcher.
type Config struct {
	// Dir is watched along with every directory below it.
	Dir string

	// Interval is the debounce period. Zero means DefaultInterval.
	Interval time.Duration

	// Extensions lists the file extensions that trigger a run.
	// Names lists exact base names that also do.
	Extensions []string
	Names      []string
}

// Watcher watches a directory tree.
type Watcher struct {
	watcher  *fsnotify.Watcher
	config   Config
	debounce *Debouncer
}

// New creates a watcher. Call Close when done.
func New(config Config) (*Watcher, error) {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{watcher: w, config: config, debounce: NewDebouncer(config.Interval)}, nil
}

// Watch calls onChange after every debounced burst of relevant events until
// ctx is cancelled. Errors from onChange are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string) error) error {
	if err := w.addTree(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
	}
	slog.Info("watching", "dir", w.config.Dir, "debounce_ms", w.config.Interval.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				// New directories are watched too; files in them count.
				_ = w.addTree(event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("file event", "path", event.Name, "op", event.Op.String())

			path := event.Name
			w.debounce.Trigger(func() {
				if err := onChange(path); err != nil {
					slog.Error("rerun failed", "path", path, "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("watch error", "error", err)
		}
	}
}

// Close stops pending runs and releases the watcher.
func (w *Watcher) Close() error {
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addTree watches dir and every non-hidden directory below it. Files are
// ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// relevant reports whether an event should trigger a run.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if slices.Contains(w.config.Names, base) {
		return true
	}
	return slices.Contains(w.config.Extensions, strings.ToLower(filepath.Ext(base)))
}

// Debouncer collects rapid triggers and runs the last callback once a quiet
// period has passed.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	cb := d.callback
	d.callback = nil
	stopped := d.stopped
	d.mu.Unlock()

	if cb != nil && !stopped {
		cb()
	}
}

// Stop cancels the pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
