package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nocycle/internal/testutil"
)

func TestWatcher_LoopBatchesEvents(t *testing.T) {
	root := t.TempDir()
	w := New(Options{Root: root, Extensions: []string{".js", "ts"}, Debounce: 20 * time.Millisecond}, testutil.NewTestLogger(t))

	events := make(chan fsnotify.Event, 8)
	errs := make(chan error, 1)
	batches := make(chan []string, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.loop(ctx, events, errs, nil, func(_ context.Context, changed []string) error {
			batches <- changed
			return errors.New("lint failed")
		})
	}()

	events <- fsnotify.Event{Name: filepath.Join(root, "src", "b.ts"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(root, "a.js"), Op: fsnotify.Create}
	events <- fsnotify.Event{Name: filepath.Join(root, "a.js"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(root, "c.js"), Op: fsnotify.Chmod}
	errs <- errors.New("overflow")

	select {
	case got := <-batches:
		assert.Equal(t, []string{"a.js", "src/b.ts"}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	// The callback error is logged; the loop keeps going.
	events <- fsnotify.Event{Name: filepath.Join(root, "a.js"), Op: fsnotify.Remove}
	select {
	case got := <-batches:
		assert.Equal(t, []string{"a.js"}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for second batch")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestWatcher_LoopStopsOnClosedChannel(t *testing.T) {
	w := New(Options{Root: t.TempDir()}, testutil.NewTestLogger(t))
	events := make(chan fsnotify.Event)
	close(events)

	err := w.loop(context.Background(), events, nil, nil, func(context.Context, []string) error {
		t.Error("onChange should not run")
		return nil
	})
	assert.NoError(t, err)
}

func TestWatcher_Run(t *testing.T) {
	root := testutil.NewProject(t, map[string]string{"src/a.js": "export {}\n"})
	w := New(Options{Root: root, Extensions: []string{".js"}, Debounce: 20 * time.Millisecond}, testutil.NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		})
	}()

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.js"), []byte("import './b'\n"), 0o600))

	select {
	case got := <-batches:
		assert.Contains(t, got, "src/a.js")
	case <-ctx.Done():
		t.Fatal("timed out waiting for change")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_RelevantFiltersExtensions(t *testing.T) {
	w := New(Options{Root: "/p", Extensions: []string{".ts"}}, nil)

	rel, ok := w.relevant(fsnotify.Event{Name: "/p/src/x.TS", Op: fsnotify.Write})
	assert.True(t, ok)
	assert.Equal(t, "src/x.TS", rel)

	_, ok = w.relevant(fsnotify.Event{Name: "/p/src/x.js", Op: fsnotify.Write})
	assert.False(t, ok)
}
