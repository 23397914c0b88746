package promptpick

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startWatcher(t *testing.T, w *FileWatcher, fn WatchHandler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, fn) }()
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return cancel, done
}

func TestFileWatcher_File(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prompts.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(target, []byte("[a]\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("[a]\n"), 0o644))

	w, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(target))

	var hits, otherHits atomic.Int32
	startWatcher(t, w, func(path string) error {
		switch path {
		case target:
			hits.Add(1)
		case other:
			otherHits.Add(1)
		}
		return nil
	})

	// a burst of writes collapses into one call
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("[b]\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("[b]\n"), 0o644))

	assert.Eventually(t, func() bool { return hits.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(0), otherHits.Load())
}

func TestFileWatcher_Directory(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWatcher(10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Add(dir))

	created := filepath.Join(dir, "new.yaml")
	var seen atomic.Value
	startWatcher(t, w, func(path string) error {
		seen.Store(path)
		return nil
	})

	require.NoError(t, os.WriteFile(created, []byte("a: 1\n"), 0o644))
	assert.Eventually(t, func() bool {
		p, _ := seen.Load().(string)
		return p == created
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_CallbackErrorLogged(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "p.toml")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	w, err := NewFileWatcher(10*time.Millisecond, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, w.Add(target))

	startWatcher(t, w, func(string) error { return errors.New("reload failed") })

	require.NoError(t, os.WriteFile(target, []byte("[x]\n"), 0o644))
	assert.Eventually(t, func() bool {
		return logs.FilterMessage(LogMsgWatcherCallback).Len() > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_Stop(t *testing.T) {
	t.Run("context", func(t *testing.T) {
		w, err := NewFileWatcher(0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultWatchDebounce, w.debounce)

		cancel, done := startWatcher(t, w, func(string) error { return nil })
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("close", func(t *testing.T) {
		w, err := NewFileWatcher(0, nil)
		require.NoError(t, err)

		_, done := startWatcher(t, w, func(string) error { return nil })
		require.NoError(t, w.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("run did not return after close")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		w, err := NewFileWatcher(0, nil)
		require.NoError(t, err)
		defer w.Close()
		assert.Error(t, w.Add(filepath.Join(t.TempDir(), "absent")))
	})
}
