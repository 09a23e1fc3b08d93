package docservice

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each raw document change seen by the watcher.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// SyncCallback is called after each watcher-driven pipeline run.
type SyncCallback func(report *SyncReport)

// Watch starts an fsnotify watcher on the docs root and keeps memory file
// and index fresh until ctx is cancelled. Change events are debounced and
// then flow through the full Sync pipeline; relationship inference only
// makes sense over the whole document set, so there is no per-file fast
// path. onFile (if non-nil) fires per raw event, onSync (if non-nil) after
// each completed pipeline run.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events surface as a delete for the old path plus a create
// for the new one; both collapse into the same debounced run.
func (s *Service) Watch(ctx context.Context, docsRoot string, debounce time.Duration, onFile EventCallback, onSync SyncCallback) error {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, docsRoot); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", docsRoot))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			report, err := s.Sync(ctx)
			if err != nil {
				s.logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			if onSync != nil {
				onSync(report)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories join the watch list; any documents they
			// already contain are picked up by the scheduled run.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						s.logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						s.logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					scheduleSync()
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(filepath.Dir(docsRoot), absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				s.emit(onFile, "created", rel)
			case ev.Op&fsnotify.Write != 0:
				s.emit(onFile, "updated", rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.emit(onFile, "deleted", rel)
			default:
				continue
			}
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (s *Service) emit(cb EventCallback, kind, path string) {
	s.logger.Debug("watcher: "+kind, slog.String("path", path))
	if cb != nil {
		cb(kind, path)
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
