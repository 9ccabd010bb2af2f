// Package testutil provides shared test helpers for setting up vaults,
// databases and repository contract checks.
package testutil

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/index"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "socialgram-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Idea returns a valid idea with the given id and title.
func Idea(id, title string) models.ContentIdea {
	f := models.DefaultNewIdeaForm()
	f.Title = title
	return models.NewIdea(f, id, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

// RepositoryContract runs the behaviour every Repository driver must share.
// newRepo must return an empty repository.
func RepositoryContract(t *testing.T, newRepo func(t *testing.T) repository.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("InsertAndFetch", func(t *testing.T) {
		repo := newRepo(t)
		in := Idea("a", "First idea")
		in.ReferenceLinks = []string{"https://one.test", "https://one.test"}
		in.Script = "# Script\nbody"
		if _, err := repo.Insert(ctx, in); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		got, err := repo.FetchByID(ctx, "a")
		if err != nil {
			t.Fatalf("FetchByID: %v", err)
		}
		if got.Title != in.Title || got.Script != in.Script || len(got.ReferenceLinks) != 2 {
			t.Errorf("got %+v", got)
		}
		if got.DeploymentLinks == nil {
			t.Error("empty link lists should be non-nil")
		}
		if !got.CreatedAt.Equal(in.CreatedAt) {
			t.Errorf("createdAt = %v, want %v", got.CreatedAt, in.CreatedAt)
		}
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		repo := newRepo(t)
		_, _ = repo.Insert(ctx, Idea("dup", "Duplicate"))
		if _, err := repo.Insert(ctx, Idea("dup", "Duplicate")); !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("FetchMissing", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.FetchByID(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		repo := newRepo(t)
		orig, _ := repo.Insert(ctx, Idea("u", "Before"))
		links := []string{"https://edit.test"}
		got, err := repo.Update(ctx, "u", models.Patch{
			CreativeStatus: models.Ptr(models.CreativeScripting),
			EditFileLinks:  &links,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Title != "Before" || got.CreativeStatus != models.CreativeScripting || len(got.EditFileLinks) != 1 {
			t.Errorf("got %+v", got)
		}
		if !got.UpdatedAt.After(orig.UpdatedAt) {
			t.Errorf("updatedAt %v not after %v", got.UpdatedAt, orig.UpdatedAt)
		}
		if !got.CreatedAt.Equal(orig.CreatedAt) {
			t.Error("createdAt changed on update")
		}
		again, _ := repo.FetchByID(ctx, "u")
		if again.CreativeStatus != models.CreativeScripting {
			t.Errorf("update not persisted: %+v", again)
		}
	})

	t.Run("UpdateRejectsBadEnum", func(t *testing.T) {
		repo := newRepo(t)
		_, _ = repo.Insert(ctx, Idea("v", "Valid"))
		_, err := repo.Update(ctx, "v", models.Patch{Type: models.Ptr(models.ContentType("mid-form"))})
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("err = %v, want ValidationError", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Update(ctx, "nope", models.Patch{Title: models.Ptr("x")}); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("FetchAllOrdered", func(t *testing.T) {
		repo := newRepo(t)
		_, _ = repo.Insert(ctx, Idea("old", "Old idea"))
		_, _ = repo.Insert(ctx, Idea("new", "New idea"))
		if _, err := repo.Update(ctx, "old", models.Patch{Title: models.Ptr("Old idea, touched")}); err != nil {
			t.Fatal(err)
		}
		all, err := repo.FetchAll(ctx)
		if err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
		if len(all) != 2 || all[0].ID != "old" {
			t.Errorf("order = %v", ids(all))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		_, _ = repo.Insert(ctx, Idea("d", "Delete me"))
		if err := repo.Delete(ctx, "d"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.FetchByID(ctx, "d"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("fetch after delete: %v", err)
		}
		if err := repo.Delete(ctx, "d"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("second delete: %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		repo := newRepo(t)
		s, ok := repo.(repository.Searcher)
		if !ok {
			t.Skip("repository does not implement Searcher")
		}
		in := Idea("s", "Searchable")
		in.Script = "talk about uniquetoken here"
		_, _ = repo.Insert(ctx, in)
		_, _ = repo.Insert(ctx, Idea("other", "Unrelated"))
		res, err := s.Search(ctx, "uniquetoken", 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(res) != 1 || res[0].ID != "s" {
			t.Errorf("results = %+v", res)
		}
	})
}

func ids(ideas []models.ContentIdea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.ID
	}
	return out
}
