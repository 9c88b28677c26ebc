package documents

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/logger"
)

// Invalidator is implemented by caches that can be reset.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates a cache whenever a supported file in the document
// directory changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  Invalidator
	logger  *zap.Logger
}

// NewWatcher starts watching dir.
func NewWatcher(dir string, target Invalidator, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{watcher: w, target: target, logger: logger.OrNop(log)}, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	const changes = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsSupported(event.Name) || event.Op&changes == 0 {
				continue
			}
			w.logger.Info("document changed, invalidating cache",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			w.target.Invalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("document watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
