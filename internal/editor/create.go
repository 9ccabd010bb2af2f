package editor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

// Creator validates the new-idea form and stores the resulting idea.
type Creator struct {
	repo     repository.Repository
	notifier notify.Notifier
	newID    func() string
	now      func() time.Time
}

// CreatorOption configures a Creator.
type CreatorOption func(*Creator)

// WithIDFunc overrides identifier generation (random UUIDs by default).
func WithIDFunc(fn func() string) CreatorOption {
	return func(c *Creator) { c.newID = fn }
}

// WithCreatorClock overrides the creation timestamp source.
func WithCreatorClock(now func() time.Time) CreatorOption {
	return func(c *Creator) { c.now = now }
}

// NewCreator returns a Creator writing to repo and reporting to n.
func NewCreator(repo repository.Repository, n notify.Notifier, opts ...CreatorOption) *Creator {
	if n == nil {
		n = notify.Discard
	}
	c := &Creator{repo: repo, notifier: n, newID: uuid.NewString, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Create validates f and inserts a new idea. Validation failures return an
// *apperr.ValidationError before anything is stored and raise no
// notification.
func (c *Creator) Create(ctx context.Context, f models.NewIdeaForm) (models.ContentIdea, error) {
	if err := apperr.FromValidation(f.Validate()); err != nil {
		return models.ContentIdea{}, err
	}
	idea := models.NewIdea(f, c.newID(), c.now())
	stored, err := c.repo.Insert(ctx, idea)
	if err != nil {
		slog.Warn("editor: create failed", slog.String("id", idea.ID), slog.String("error", err.Error()))
		c.notifier.Notify(notify.CreateFail)
		return models.ContentIdea{}, err
	}
	c.notifier.Notify(notify.Created.For(idea.ID))
	return stored, nil
}

// Dashboard fetches every idea for the card grid. On failure it notifies
// "Error fetching ideas" and returns an empty list along with the error.
func Dashboard(ctx context.Context, repo repository.Repository, n notify.Notifier) ([]models.ContentIdea, error) {
	ideas, err := repo.FetchAll(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("editor: fetch ideas failed", slog.String("error", err.Error()))
			if n != nil {
				n.Notify(notify.FetchFailed)
			}
		}
		return []models.ContentIdea{}, err
	}
	if ideas == nil {
		ideas = []models.ContentIdea{}
	}
	return ideas, nil
}
