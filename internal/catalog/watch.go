package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog file when it changes on disk. Reloads swap
// the catalog between runs; a catalog handed to a running analysis is
// never mutated.
type Watcher struct {
	mu      sync.RWMutex
	current *Catalog

	path     string
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	lastLoad time.Time
	closeCh  chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher loads the catalog at path and starts watching its parent
// directory for changes. Editors replace files rather than writing in
// place, so the directory (not the file) is the watch target.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		current:  cat,
		path:     path,
		logger:   logger,
		watcher:  fsWatcher,
		debounce: 250 * time.Millisecond,
		closeCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded catalog.
func (w *Watcher) Current() *Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.closeCh)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Since(w.lastLoad) < w.debounce {
		return
	}
	w.lastLoad = time.Now()

	cat, err := Load(w.path)
	if err != nil {
		// Keep serving the previous catalog on a bad edit.
		w.logger.Warn("catalog reload failed", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	w.current = cat
	w.logger.Info("catalog reloaded", slog.String("path", w.path), slog.String("version", cat.Version))
}
