package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

type failingRepo struct {
	repository.Repository
	err error
}

func (r failingRepo) FetchAll(context.Context) ([]models.ContentIdea, error) { return nil, r.err }

func (r failingRepo) Insert(context.Context, models.ContentIdea) (models.ContentIdea, error) {
	return models.ContentIdea{}, r.err
}

func TestCreator_TitleLength(t *testing.T) {
	rec := &notify.Recorder{}
	repo := repository.NewMemory()
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	c := NewCreator(repo, rec, WithIDFunc(func() string { return "fixed" }), WithCreatorClock(func() time.Time { return now }))

	f := models.DefaultNewIdeaForm()
	f.Title = "ab"
	_, err := c.Create(context.Background(), f)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Fields["title"] != "Title must be at least 3 characters" {
		t.Fatalf("err = %v", err)
	}
	if all, _ := repo.FetchAll(context.Background()); len(all) != 0 || len(rec.All()) != 0 {
		t.Fatal("invalid form reached the repository or notified")
	}

	f.Title = "abc"
	idea, err := c.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if idea.ID != "fixed" || !idea.CreatedAt.Equal(now) || !idea.UpdatedAt.Equal(now) {
		t.Errorf("idea = %+v", idea)
	}
	if idea.Script != "" || len(idea.ReferenceLinks) != 0 {
		t.Errorf("new idea should start empty: %+v", idea)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Idea created!" {
		t.Errorf("notifications = %v", got)
	}
}

func TestCreator_UniqueIDs(t *testing.T) {
	c := NewCreator(repository.NewMemory(), nil)
	f := models.DefaultNewIdeaForm()
	f.Title = "Same title"
	a, err := c.Create(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Create(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID || a.ID == "" {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
}

func TestCreator_InsertFailure(t *testing.T) {
	rec := &notify.Recorder{}
	c := NewCreator(failingRepo{err: errors.New("down")}, rec)
	f := models.DefaultNewIdeaForm()
	f.Title = "Valid"
	if _, err := c.Create(context.Background(), f); err == nil {
		t.Fatal("expected error")
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Error creating idea" {
		t.Errorf("notifications = %v", got)
	}
}

func TestDashboard(t *testing.T) {
	rec := &notify.Recorder{}
	ideas, err := Dashboard(context.Background(), repository.NewMemory(), rec)
	if err != nil || ideas == nil || len(ideas) != 0 {
		t.Fatalf("empty dashboard: %v, %v", ideas, err)
	}

	ideas, err = Dashboard(context.Background(), failingRepo{err: errors.New("down")}, rec)
	if err == nil || len(ideas) != 0 {
		t.Fatalf("failing dashboard: %v, %v", ideas, err)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Error fetching ideas" {
		t.Errorf("notifications = %v", got)
	}
}
