// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// dirWatcher refreshes a loader snapshot after changes in its source directory.
type dirWatcher struct {
	watcher *fsnotify.Watcher
	loader  *Loader
	// stop is closed to end the event loop.
	stop chan struct{}
	// done is closed when the event loop has exited.
	done     chan struct{}
	debounce time.Duration
}

// startDirWatcher watches root non-recursively and starts the event loop.
func startDirWatcher(l *Loader, root string, debounce time.Duration) (*dirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	if err := watcher.Add(root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w := &dirWatcher{
		watcher:  watcher,
		loader:   l,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go w.run()

	return w, nil
}

// run debounces relevant events into one Refresh per burst.
func (w *dirWatcher) run() {
	defer close(w.done)

	var debounceTimer *time.Timer
	for {
		select {
		case <-w.stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantChange(event) {
				continue
			}

			w.loader.logger.Debug("variant source changed", "file", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Write) {
				w.dropContent(filepath.Base(event.Name))
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.refresh)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.loader.logger.Warn("variant watcher error", "error", err)
		}
	}
}

// refresh rescans the loader source after a debounced burst of events.
func (w *dirWatcher) refresh() {
	err := w.loader.Refresh(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, ErrClosed):
		w.loader.logger.Debug("skipped refresh of closed loader")
	default:
		w.loader.logger.Warn("variant refresh failed", "error", err)
	}
}

// dropContent invalidates cached entries of the base name owning a rewritten file.
//
// Rewrites keep the candidate set intact, so a rescan alone would not notice them.
func (w *dirWatcher) dropContent(name string) {
	if w.loader.cache == nil {
		return
	}

	c, err := w.loader.codec.ParseFilename(name)
	if err != nil {
		return
	}

	w.loader.cache.InvalidateBase(c.BaseName)
}

// isRelevantChange reports whether event can change the candidate set.
func (w *dirWatcher) isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	return w.loader.codec.Recognized(filepath.Base(event.Name))
}

// close stops the event loop and releases the watcher.
func (w *dirWatcher) close() error {
	close(w.stop)
	<-w.done

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close file watcher: %w", err)
	}

	return nil
}
