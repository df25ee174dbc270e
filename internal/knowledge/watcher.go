package knowledge

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StartWatcher watches the knowledge file for external edits (curators fill
// in answers directly) and drops the store's cache when the file changes.
// Watching the parent directory is more reliable than watching the file
// itself, since editors replace files by rename.
func (s *Store) StartWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create knowledge file watcher: %w", err)
	}

	absPath, err := filepath.Abs(s.path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to resolve knowledge file path: %w", err)
	}
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		// Debounce rapid write bursts from editors that save in chunks.
		var debounce *time.Timer
		const debounceDuration = 500 * time.Millisecond

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filename {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create ||
					event.Op&fsnotify.Rename == fsnotify.Rename {
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(debounceDuration, func() {
						s.InvalidateCache()
						slog.Info("knowledge file changed on disk, cache invalidated", "path", s.path)
					})
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("knowledge file watcher error", "error", err)
			}
		}
	}()

	return nil
}
