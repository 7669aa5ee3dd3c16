package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// watcher calls onChange after a definition file is written.
type watcher struct {
	path     string
	logger   *slog.Logger
	onChange func()
	debounce time.Duration
}

func newWatcher(path string, logger *slog.Logger, onChange func()) *watcher {
	return &watcher{
		path:     path,
		logger:   logger,
		onChange: onChange,
		debounce: 300 * time.Millisecond,
	}
}

// Watch blocks until the context is done. Bursts of events within the
// debounce interval trigger a single call, and calls never overlap.
func (w *watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	// Editors replace files, so the directory is watched instead.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Info("watching for changes", "file", w.path)

	changed := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-changed:
				w.logger.Info("file changed", "file", w.path)
				w.onChange()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	g.Go(func() error {
		name := filepath.Base(w.path)
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if filepath.Base(ev.Name) != name || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.logger.Warn("watcher error", "error", err)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	return g.Wait()
}
