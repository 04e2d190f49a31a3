// Package watcher delivers debounced batches of changed source files.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/codefeat/internal/config"
	"github.com/mvp-joe/codefeat/internal/logging"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directory trees and reports changed files with monitored extensions.
type Watcher struct {
	fsw        *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	logger     *slog.Logger

	callback func(files []string)
	cancel   context.CancelFunc

	pending   map[string]bool
	pendingMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for non-fatal watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher over dirs (recursively) for files whose extension is
// in extensions. Extensions are matched case-insensitively and must include
// the leading dot.
func New(dirs []string, extensions []string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}

	w := &Watcher{
		fsw:        fsw,
		extensions: extMap,
		debounce:   debounce,
		logger:     logging.NewDiscardLogger(),
		pending:    make(map[string]bool),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins delivering batches to callback until ctx is cancelled or Stop
// is called. Batches are sorted and contain each path once. The callback runs
// on the watch goroutine, so events arriving meanwhile form the next batch.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)

	go w.run(ctx)
	return nil
}

// Stop stops watching. It is safe to call more than once and from several goroutines.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fsw.Close()
	})
	return err
}

// Done is closed once the watch goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !w.relevant(event) {
				continue
			}

			w.pendingMu.Lock()
			w.pending[event.Name] = true
			w.pendingMu.Unlock()

			w.resetTimer(flushCh)

		case <-flushCh:
			w.flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for file := range w.pending {
		files = append(files, file)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

func (w *Watcher) resetTimer(flushCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// relevant reports whether an event names a monitored file that was created,
// written, removed or renamed.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(event.Name))]
}

// addRecursive watches root and every directory below it, skipping the
// tool's own state directory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name() == config.DirName {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
