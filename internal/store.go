package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/socialgram/internal/ideaservice"
	"github.com/starford/socialgram/internal/index"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/storage"
)

// backend is the idea store selected by the configured driver.
type backend struct {
	repo repository.Repository
	// watch, when set, re-indexes external edits until ctx is cancelled.
	watch func(ctx context.Context, cb index.EventCallback) error
	close func()
}

func openBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case DriverMemory:
		opts := []repository.MemoryOption{repository.WithSeed(models.SeedIdeas())}
		if cfg.Editor.MockLatency {
			opts = append(opts, repository.WithLatency(repository.MockLatency))
		}
		return &backend{repo: repository.NewMemory(opts...), close: func() {}}, nil

	case DriverPostgres:
		db, err := repository.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewPostgres(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &backend{repo: repo, close: func() { db.Close() }}, nil

	case DriverVault:
		return openVault(cfg, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openVault(cfg *Config, logger *slog.Logger) (*backend, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &backend{
		repo: ideaservice.NewService(store, db),
		watch: func(ctx context.Context, cb index.EventCallback) error {
			return index.Watch(ctx, db, store, store.Root(), logger, cb)
		},
		close: func() { db.Close() },
	}, nil
}
