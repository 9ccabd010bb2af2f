package index

import (
	"log/slog"

	"github.com/starford/socialgram/internal/checksum"
	"github.com/starford/socialgram/internal/codec"
	"github.com/starford/socialgram/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed idea files are decoded and upserted
//   - ideas whose files were removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List(codec.Ext)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		id, ok := codec.IDFromFileName(m.Path)
		if !ok {
			continue
		}
		disk[id] = struct{}{}

		if checksums[id] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, id, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", id))
		}
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteIdea(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// IndexFile decodes data and upserts it under id. The file name is
// authoritative: a frontmatter id that disagrees is overwritten.
func IndexFile(db IdeaIndex, id string, data []byte) error {
	idea, err := codec.Decode(data)
	if err != nil {
		return err
	}
	idea.ID = id
	return db.UpsertIdea(idea, checksum.Sum(data))
}

func indexFile(db *DB, id string, data []byte) error {
	return IndexFile(db, id, data)
}

// indexIfChanged indexes data unless the stored checksum already matches.
// It reports whether the index changed.
func indexIfChanged(db *DB, id string, data []byte) (bool, error) {
	prev, err := db.GetChecksum(id)
	if err != nil {
		return false, err
	}
	if prev != "" && checksum.Matches(data, prev) {
		return false, nil
	}
	if err := indexFile(db, id, data); err != nil {
		return false, err
	}
	return true, nil
}
