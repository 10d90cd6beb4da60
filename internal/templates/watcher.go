package templates

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the renderer whenever a template file changes, until ctx is
// canceled. Parse failures keep the previously loaded set.
func (r *Renderer) Watch(ctx context.Context, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, sub := range []string{"mail", "sms"} {
		if err := watcher.Add(filepath.Join(r.dir, sub)); err != nil {
			watcher.Close()
			return err
		}
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				if err := r.Reload(); err != nil {
					if log != nil {
						log.Warn("template reload failed", slog.String("file", event.Name), slog.Any("error", err))
					}
					continue
				}

				if log != nil {
					log.Info("templates reloaded", slog.String("file", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if log != nil {
					log.Warn("template watcher error", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}
