package promptpick

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchHandler is called with the path of a changed file or directory.
// Handlers for different paths may run concurrently.
type WatchHandler func(path string) error

// FileWatcher reports changes to watched files and directories. Bursts of
// events for one path are collapsed into a single call after the debounce
// period.
type FileWatcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	files  map[string]bool // watched through their parent directory
	dirs   map[string]bool
	timers map[string]*time.Timer
}

// NewFileWatcher creates a watcher. A debounce of 0 uses DefaultWatchDebounce.
func NewFileWatcher(debounce time.Duration, logger *zap.Logger) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		fs:       fs,
		debounce: debounce,
		logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add watches path. A directory reports every entry in it; a file is watched
// through its directory so editors that replace the file are still seen.
func (w *FileWatcher) Add(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if info.IsDir() {
		if w.dirs[path] {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return err
		}
		w.dirs[path] = true
		return nil
	}

	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}
	w.files[path] = true
	return nil
}

// Run delivers debounced changes to fn until ctx is done or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context, fn WatchHandler) error {
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.relevant(path) {
				continue
			}
			w.logger.Debug(LogMsgWatcherEvent,
				zap.String(LogFieldFile, path),
				zap.String(LogFieldOp, event.Op.String()))
			w.schedule(ctx, path, fn)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(LogMsgWatcherError, zap.Error(err))
		}
	}
}

// Close stops watching. A running Run returns.
func (w *FileWatcher) Close() error {
	w.stopTimers()
	return w.fs.Close()
}

func (w *FileWatcher) relevant(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path] || w.dirs[filepath.Dir(path)]
}

func (w *FileWatcher) schedule(ctx context.Context, path string, fn WatchHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := fn(path); err != nil {
			w.logger.Warn(LogMsgWatcherCallback, zap.String(LogFieldFile, path), zap.Error(err))
		}
	})
}

func (w *FileWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
