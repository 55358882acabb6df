package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"samsara/internal/logging"
)

// Watcher watches a config file for changes and reloads it, debouncing
// rapid writes the way the teacher's MangleWatcher debounces .mg file
// saves, so an editor's multi-write save doesn't trigger a reload storm.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	debounceDur time.Duration
	onReload    func(*Config, error)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a Watcher for path. onReload is invoked (with the
// newly loaded config, or the error from a failed reload) after each
// settled change.
func NewWatcher(path string, onReload func(*Config, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        path,
		debounceDur: 300 * time.Millisecond,
		onReload:    onReload,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		logging.ConfigWarn("watcher: failed to watch %s: %v", dir, err)
	} else {
		logging.ConfigDebug("watcher: watching %s for changes to %s", dir, w.path)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var pending bool
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			pending = true
			timer.Reset(w.debounceDur)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.ConfigError("watcher: fsnotify error: %v", err)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			cfg, err := Load(w.path)
			if err != nil {
				logging.ConfigError("watcher: reload of %s failed: %v", w.path, err)
			} else {
				logging.Config("watcher: reloaded config from %s", w.path)
			}
			if w.onReload != nil {
				w.onReload(cfg, err)
			}
		}
	}
}
