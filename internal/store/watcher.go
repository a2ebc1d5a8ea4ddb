package store

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch reports external changes to a persisted key, so a word list edited
// by another process (or synced in) is picked up without a restart. Events
// are delivered on the returned channel; the cancel func stops the watcher.
func (s *Store) Watch(key string) (<-chan struct{}, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	// Watch the directory: atomic rename-into-place replaces the file
	// inode, which a file-level watch would lose.
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	target := filepath.Base(s.Path(key))
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug("persisted state changed on disk", "key", key, "op", event.Op)
				select {
				case ch <- struct{}{}:
				default: // coalesce bursts
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug("watch error", "key", key, "error", err)
			}
		}
	}()

	cancel := func() { _ = watcher.Close() }
	return ch, cancel, nil
}
