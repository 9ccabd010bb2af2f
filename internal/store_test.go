package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/testutil"
)

func TestOpenBackend_Memory(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = DriverMemory
	b, err := openBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer b.close()

	ideas, err := b.repo.FetchAll(context.Background())
	if err != nil || len(ideas) != 3 {
		t.Fatalf("seeded ideas = %d, err = %v", len(ideas), err)
	}
	if b.watch != nil {
		t.Error("memory driver should not watch")
	}
}

func TestOpenBackend_VaultIndexesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Vault.Path = filepath.Join(dir, "vault")
	cfg.SQLite.Path = filepath.Join(dir, "index.db")

	// Ideas written in one run are listed in the next.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		t.Fatal(err)
	}
	b, err := openBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.repo.Insert(context.Background(), testutil.Idea("pre", "Existing idea")); err != nil {
		t.Fatal(err)
	}
	b.close()

	b, err = openBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer b.close()
	ideas, err := b.repo.FetchAll(context.Background())
	if err != nil || len(ideas) != 1 || ideas[0].ID != "pre" {
		t.Fatalf("ideas = %+v, err = %v", ideas, err)
	}
	if b.watch == nil {
		t.Error("vault driver should watch")
	}
	if _, ok := b.repo.(repository.LinkFinder); !ok {
		t.Error("vault repository should support link lookup")
	}
}
