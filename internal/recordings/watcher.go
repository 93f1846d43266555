package recordings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smazurov/vhsnode/internal/events"
)

// Watcher publishes a RecordingChangedEvent whenever a recording appears in
// or leaves the output directory.
type Watcher struct {
	dir     string
	bus     *events.Bus
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, bus *events.Bus, logger *slog.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:    dir,
		bus:    bus,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start begins watching, creating the directory if needed.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if addErr := watcher.Add(w.dir); addErr != nil {
		watcher.Close()
		return addErr
	}
	w.watcher = watcher

	w.logger.Info("Recordings watcher started", "dir", w.dir)
	go w.watch()
	return nil
}

// Stop stops watching and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watch() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Recordings watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Recordings watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !Listed(name) {
		return
	}

	var action string
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err != nil || !info.Mode().IsRegular() {
			return
		}
		action = "created"
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		action = "removed"
	default:
		// Writes to a growing recording are not interesting.
		return
	}

	w.logger.Debug("Recording changed", "action", action, "name", name)
	w.bus.Publish(events.RecordingChangedEvent{
		Action:    action,
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
