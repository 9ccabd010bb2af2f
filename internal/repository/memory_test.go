package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/testutil"
)

func TestMemoryContract(t *testing.T) {
	testutil.RepositoryContract(t, func(t *testing.T) repository.Repository {
		return repository.NewMemory()
	})
}

func TestMemorySeed(t *testing.T) {
	repo := repository.NewMemory(repository.WithSeed(models.SeedIdeas()))
	all, err := repo.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Idea 3 has the most recent updatedAt in the seed data.
	if all[0].ID != "3" {
		t.Errorf("first = %q, want 3", all[0].ID)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := repository.NewMemory(repository.WithSeed(models.SeedIdeas()))
	ctx := context.Background()
	idea, _ := repo.FetchByID(ctx, "1")
	idea.ReferenceLinks[0] = "mutated"
	again, _ := repo.FetchByID(ctx, "1")
	if again.ReferenceLinks[0] == "mutated" {
		t.Error("FetchByID leaked internal slice")
	}
}

func TestMemoryLatencyHonoursContext(t *testing.T) {
	repo := repository.NewMemory(
		repository.WithSeed(models.SeedIdeas()),
		repository.WithLatency(repository.Latency{FetchOne: time.Hour}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := repo.FetchByID(ctx, "1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestMemoryFrozenClockStillAdvances(t *testing.T) {
	frozen := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := repository.NewMemory(
		repository.WithSeed(models.SeedIdeas()),
		repository.WithClock(func() time.Time { return frozen }),
	)
	ctx := context.Background()
	prev, _ := repo.FetchByID(ctx, "1")
	for i := 0; i < 3; i++ {
		next, err := repo.Update(ctx, "1", models.Patch{Script: models.Ptr("edit")})
		if err != nil {
			t.Fatal(err)
		}
		if !next.UpdatedAt.After(prev.UpdatedAt) {
			t.Fatalf("updatedAt %v not after %v", next.UpdatedAt, prev.UpdatedAt)
		}
		prev = next
	}
}

func TestWithEvents(t *testing.T) {
	var mu sync.Mutex
	var events []string
	repo := repository.WithEvents(repository.NewMemory(), func(kind, id string) {
		mu.Lock()
		events = append(events, kind+":"+id)
		mu.Unlock()
	})
	ctx := context.Background()
	_, _ = repo.Insert(ctx, testutil.Idea("e", "Evented"))
	_, _ = repo.Update(ctx, "e", models.Patch{Title: models.Ptr("Renamed")})
	_, _ = repo.Update(ctx, "missing", models.Patch{Title: models.Ptr("x")})
	_ = repo.Delete(ctx, "e")

	want := []string{"created:e", "updated:e", "deleted:e"}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
	if _, ok := repo.(repository.Searcher); !ok {
		t.Error("WithEvents should preserve Searcher")
	}
	if _, ok := repo.(repository.LinkFinder); ok {
		t.Error("WithEvents should not add LinkFinder to a repository without it")
	}
}
