package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/socialgram/internal/codec"
	"github.com/starford/socialgram/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each index mutation. Writes that leave a file's checksum unchanged,
// such as the application's own saves, produce no callback.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	emit := func(kind, id string) {
		if cb != nil {
			cb(kind, id)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, emit)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			id, isIdea := codec.IDFromFileName(name)
			if !isIdea || filepath.Dir(ev.Name) != filepath.Clean(vaultRoot) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", name), slog.String("error", readErr.Error()))
					continue
				}
				existed, _ := db.GetChecksum(id)
				changed, idxErr := indexIfChanged(db, id, data)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", name), slog.String("error", idxErr.Error()))
					continue
				}
				if !changed {
					continue
				}
				kind := "updated"
				if existed == "" {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("id", id), slog.String("op", kind))
				emit(kind, id)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteIdea(id); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("id", id))
				emit("deleted", id)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; a new path
				// inside the vault arrives as a separate Create.
				if delErr := db.DeleteIdea(id); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
				} else {
					emit("deleted", id)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a file on disk and indexes
// on-disk files that are missing or stale in the index.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, emit func(kind, id string)) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List(codec.Ext)
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]storage.FileMeta, len(metas))
	for _, m := range metas {
		if id, ok := codec.IDFromFileName(m.Path); ok {
			disk[id] = m
		}
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if delErr := db.DeleteIdea(id); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("id", id))
				emit("deleted", id)
			}
		}
	}

	for id, m := range disk {
		prev, known := checksums[id]
		if known && prev == m.Checksum {
			continue
		}
		data, readErr := store.Read(m.Path)
		if readErr != nil {
			continue
		}
		if idxErr := indexFile(db, id, data); idxErr == nil {
			kind := "updated"
			if !known {
				kind = "created"
			}
			logger.Debug("reconcile: indexed", slog.String("id", id))
			emit(kind, id)
		}
	}
}
