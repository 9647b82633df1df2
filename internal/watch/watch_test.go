package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Debouncer
// =============================================================================

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32
	for i := range 5 {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(4), last.Load(), "the last callback wins")
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

// =============================================================================
// Watcher
// =============================================================================

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{config: Config{Extensions: []string{".mq"}, Names: []string{"marq.cue"}}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"source write", fsnotify.Event{Name: "/p/main.mq", Op: fsnotify.Write}, true},
		{"upper case extension", fsnotify.Event{Name: "/p/MAIN.MQ", Op: fsnotify.Create}, true},
		{"manifest", fsnotify.Event{Name: "/p/marq.cue", Op: fsnotify.Write}, true},
		{"other file", fsnotify.Event{Name: "/p/notes.txt", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/p/main.mq", Op: fsnotify.Chmod}, false},
		{"hidden", fsnotify.Event{Name: "/p/.main.mq.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestWatcher_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))

	w, err := New(Config{Dir: dir, Interval: 20 * time.Millisecond, Extensions: []string{".mq"}})
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	var changed []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(path string) error {
			mu.Lock()
			defer mu.Unlock()
			changed = append(changed, filepath.Base(path))
			return nil
		})
	}()

	// Give the watcher time to register the tree.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.mq"), []byte("let a = 1"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "util.mq", changed[len(changed)-1])
	assert.NotContains(t, changed, "notes.txt")
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := New(Config{Dir: filepath.Join(t.TempDir(), "gone")})
	require.NoError(t, err)
	defer w.Close()

	err = w.Watch(context.Background(), func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
