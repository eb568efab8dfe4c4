package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 50 * time.Millisecond

// watchWorker feeds external filesystem changes back into subscriptions.
// Writes made through the Store already notify synchronously; the watcher
// exists so edits from other processes (or other stores on the same
// directory) reach live views too.
type watchWorker struct {
	*worker.BaseWorker
	store     *Store
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(store *Store) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		store:      store,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.addDirectories(watcher); err != nil {
		_ = watcher.Close()
		return err
	}

	debounce := w.store.config.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w.watcher = watcher
	w.debouncer = newDebouncer(debounce)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

// addDirectories watches the root and every collection directory.
func (w *watchWorker) addDirectories(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(w.store.Path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.store.Path, err)
	}
	entries, err := os.ReadDir(w.store.Path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == w.store.config.SystemDir {
			continue
		}
		_ = watcher.Add(filepath.Join(w.store.Path, entry.Name()))
	}
	return nil
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) handleEvent(event fsnotify.Event) {
	// A new collection directory needs its own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if filepath.Base(event.Name) != w.store.config.SystemDir {
				_ = w.watcher.Add(event.Name)
			}
			return
		}
	}

	if w.store.shouldIgnore(event.Name) {
		return
	}
	collection := w.store.resolveCollection(event.Name)
	if collection == "" {
		return
	}
	w.store.invalidate(event.Name)
	w.debouncer.add(collection, func() {
		w.store.notify(collection)
	})
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.watcher.Close()
	defer func() {
		w.store.mu.Lock()
		w.store.watcherActive = false
		w.store.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.debouncer.stopAndWait(time.Second)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.logDebug("fsnotify error", "error", err)
			if w.store.config.ErrorHandler != nil {
				w.store.config.ErrorHandler(err)
			}
		}
	}
}
