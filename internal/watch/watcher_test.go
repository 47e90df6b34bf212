package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(nil, 0, nil)
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	w, err := New([]string{"resume.json"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceDelay)
	require.Len(t, w.Files(), 1)
	assert.True(t, filepath.IsAbs(w.Files()[0]))
}

func TestShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "resume.json")
	w, err := New([]string{target}, time.Millisecond, nil)
	require.NoError(t, err)

	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: target, Op: fsnotify.Write}))
	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: target, Op: fsnotify.Rename}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: target, Op: fsnotify.Chmod}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}))
}

func TestHasAnyFileChanged(t *testing.T) {
	target := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o600))

	w, err := New([]string{target}, time.Millisecond, nil)
	require.NoError(t, err)
	assert.False(t, w.hasAnyFileChanged())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(target, later, later))
	assert.True(t, w.hasAnyFileChanged())
	assert.False(t, w.hasAnyFileChanged())

	require.NoError(t, os.Remove(target))
	assert.True(t, w.hasAnyFileChanged())
}

func TestRunCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o600))

	w, err := New([]string{target}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	// The watcher may not be registered yet on the first writes, so keep
	// touching the file until a change is seen.
	step := 0
	require.Eventually(t, func() bool {
		step++
		stamp := time.Now().Add(time.Duration(step) * time.Second)
		_ = os.WriteFile(target, []byte(`{"summary":"x"}`), 0o600)
		_ = os.Chtimes(target, stamp, stamp)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
