package settings

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the settings store when its file changes on disk and
// notifies subscribers with the new snapshot. Editors replace files rather
// than writing in place, so the parent directory is watched and events are
// filtered by name.
type Watcher struct {
	store       *Store
	watcher     *fsnotify.Watcher
	subscribers []func(Settings)
	done        chan struct{}
}

func NewWatcher(store *Store) *Watcher {
	return &Watcher{
		store: store,
		done:  make(chan struct{}),
	}
}

// Subscribe registers a callback invoked after each successful reload.
// Must be called before Start.
func (w *Watcher) Subscribe(fn func(Settings)) {
	w.subscribers = append(w.subscribers, fn)
}

func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
	}

	w.watcher = watcher

	go w.run()

	slog.Debug("Settings watcher started", "path", w.store.Path())

	return nil
}

func (w *Watcher) Stop() {
	if w.watcher == nil {
		return
	}
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)

	target := filepath.Clean(w.store.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if err := w.store.Load(); err != nil {
				slog.Warn("Settings reload failed, keeping previous settings", "path", target, "error", err)
				continue
			}

			slog.Info("Settings reloaded", "path", target)

			snapshot := w.store.Get()
			for _, fn := range w.subscribers {
				fn(snapshot)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Settings watcher error", "error", err)
		}
	}
}
