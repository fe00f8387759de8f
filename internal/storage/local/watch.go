package local

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever another process rewrites the snapshot.
// It blocks until ctx is done. The snapshot's directory is watched rather
// than the file, since writers replace the file by renaming over it.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("watching snapshot", slog.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reloaded, err := s.Reload()
			if err != nil {
				// A half-written or malformed snapshot keeps the current state.
				s.logger.Warn("snapshot reload skipped", slog.String("path", target), slog.String("error", err.Error()))
				continue
			}
			if reloaded {
				s.logger.Debug("snapshot reloaded", slog.String("path", target))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("snapshot watcher error", slog.String("error", err.Error()))
		}
	}
}
