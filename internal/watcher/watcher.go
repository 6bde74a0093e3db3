// Package watcher keeps a generation pass running against a live source
// tree. It watches the scan root and every subdirectory with fsnotify,
// debounces bursts of events (editors tend to fire several per save), and
// invokes a callback once the tree settles.
package watcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/flowdeploy/internal/ctxlog"
	"github.com/vk/flowdeploy/internal/fsutil"
)

// defaultDebounce is how long the tree has to stay quiet before the
// callback fires.
const defaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when anything under a root changes.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(ctx context.Context)
	fsw      *fsnotify.Watcher
}

// New builds a watcher over root. onChange runs on the watcher's goroutine,
// so it must return before the next event can be processed.
func New(root string, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}
	return &Watcher{
		root:     root,
		debounce: defaultDebounce,
		onChange: onChange,
		fsw:      fsw,
	}, nil
}

// Run watches until ctx is cancelled. It returns the context error on
// cancellation and any watcher failure otherwise.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	logger := ctxlog.FromContext(ctx)

	dirs, err := fsutil.FindDirectories(w.root)
	if err != nil {
		return fmt.Errorf("seeding watches under %s: %w", w.root, err)
	}
	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	logger.Info("Watching for changes.", "root", w.root, "directories", len(dirs))

	// The timer is parked until the first event.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			logger.Debug("File event.", "op", event.Op.String(), "path", event.Name)

			// New directories need their own watch before anything inside
			// them can be seen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						logger.Warn("Could not watch new directory.", "path", event.Name, "error", err)
					}
				}
			}

			timer.Reset(w.debounce)

		case <-timer.C:
			logger.Debug("Tree settled, regenerating.")
			w.onChange(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}
