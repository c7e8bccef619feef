package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// settleDelay coalesces the burst of events produced by a single write.
const settleDelay = 250 * time.Millisecond

// Watch reloads the store whenever the catalog document in its directory is written or
// replaced. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "Watch: fsnotify unavailable")
	}
	defer fsw.Close()

	// Watch the directory rather than the file so atomic renames are seen.
	if err := fsw.Add(s.dir); err != nil {
		return errors.Wrapf(err, "Watch: cannot watch %s", s.dir)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(settleDelay)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Catalog watcher error", zap.Error(err))
		case <-settle:
			settle = nil
			if _, err := s.Reload(); err != nil {
				s.logger.Warn("Catalog reload after change failed", zap.Error(err))
			}
		}
	}
}
