package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watch streams a notification whenever the file is written, created, renamed or
// removed, until ctx is cancelled. The directory is watched rather than the file so
// atomic replace-by-rename saves keep being observed. Notifications are coalesced:
// a pending one is never duplicated, so callers should re-stat on receipt.
func (f File) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() { _ = watcher.Close() })
	}

	abs, err := filepath.Abs(f.Path)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: resolve %s: %w", f.Path, err)
	}
	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer closeWatcher()

		notify := func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Unknown state: let the consumer re-stat.
				notify()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				notify()
			}
		}
	}()
	return changes, nil
}
