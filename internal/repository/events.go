package repository

import (
	"context"

	"github.com/starford/socialgram/internal/models"
)

// Event kinds reported to an EventFunc.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventFunc is called after a successful mutation.
type EventFunc func(kind, id string)

type notifying struct {
	Repository
	cb EventFunc
}

// WithEvents wraps repo so cb runs after every successful Insert, Update and
// Delete. Search and link lookup support of the wrapped repository is
// preserved.
func WithEvents(repo Repository, cb EventFunc) Repository {
	n := &notifying{Repository: repo, cb: cb}
	s, searches := repo.(Searcher)
	lf, links := repo.(LinkFinder)
	switch {
	case searches && links:
		return &linkingNotifying{searchingNotifying: &searchingNotifying{notifying: n, s: s}, lf: lf}
	case searches:
		return &searchingNotifying{notifying: n, s: s}
	}
	return n
}

func (n *notifying) Insert(ctx context.Context, idea models.ContentIdea) (models.ContentIdea, error) {
	out, err := n.Repository.Insert(ctx, idea)
	if err == nil {
		n.cb(EventCreated, out.ID)
	}
	return out, err
}

func (n *notifying) Update(ctx context.Context, id string, patch models.Patch) (models.ContentIdea, error) {
	out, err := n.Repository.Update(ctx, id, patch)
	if err == nil {
		n.cb(EventUpdated, id)
	}
	return out, err
}

func (n *notifying) Delete(ctx context.Context, id string) error {
	err := n.Repository.Delete(ctx, id)
	if err == nil {
		n.cb(EventDeleted, id)
	}
	return err
}

type searchingNotifying struct {
	*notifying
	s Searcher
}

func (s *searchingNotifying) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return s.s.Search(ctx, query, limit)
}

type linkingNotifying struct {
	*searchingNotifying
	lf LinkFinder
}

func (l *linkingNotifying) IdeasLinking(ctx context.Context, url string) ([]string, error) {
	return l.lf.IdeasLinking(ctx, url)
}
