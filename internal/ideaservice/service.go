// Package ideaservice implements the vault-backed idea repository: each idea
// is a Markdown file with YAML frontmatter, mirrored into the SQLite index
// for listing and search.
package ideaservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/codec"
	"github.com/starford/socialgram/internal/index"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/storage"
)

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.IdeaIndex
	now   func() time.Time

	// mu serialises read-modify-write cycles on idea files.
	mu sync.Mutex
}

var (
	_ repository.Repository = (*Service)(nil)
	_ repository.Searcher   = (*Service)(nil)
	_ repository.LinkFinder = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to stamp updates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new idea service.
func NewService(store storage.Provider, db index.IdeaIndex, opts ...Option) *Service {
	s := &Service{store: store, db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FetchAll lists ideas from the index, most recently updated first.
func (s *Service) FetchAll(ctx context.Context) ([]models.ContentIdea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.ListIdeas()
}

// FetchByID reads the idea file from storage.
func (s *Service) FetchByID(ctx context.Context, id string) (models.ContentIdea, error) {
	if err := ctx.Err(); err != nil {
		return models.ContentIdea{}, err
	}
	return s.read(id)
}

// Insert writes a new idea file and indexes it.
func (s *Service) Insert(ctx context.Context, idea models.ContentIdea) (models.ContentIdea, error) {
	if err := ctx.Err(); err != nil {
		return models.ContentIdea{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idea = idea.Clone()
	idea.Normalize()
	data, err := codec.Encode(idea)
	if err != nil {
		return models.ContentIdea{}, err
	}
	if err := s.store.Create(codec.FileName(idea.ID), data); err != nil {
		if errors.Is(err, os.ErrExist) {
			return models.ContentIdea{}, apperr.ErrAlreadyExists
		}
		return models.ContentIdea{}, err
	}
	if err := index.IndexFile(s.db, idea.ID, data); err != nil {
		return models.ContentIdea{}, err
	}
	return idea, nil
}

// Update merges patch into the stored idea file and re-indexes it.
func (s *Service) Update(ctx context.Context, id string, patch models.Patch) (models.ContentIdea, error) {
	if err := ctx.Err(); err != nil {
		return models.ContentIdea{}, err
	}
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return models.ContentIdea{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(id)
	if err != nil {
		return models.ContentIdea{}, err
	}
	next := current.Apply(patch, s.now())
	if err := s.write(next); err != nil {
		return models.ContentIdea{}, err
	}
	return next, nil
}

// Delete removes an idea file from storage and index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(codec.FileName(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteIdea(id)
}

// Search delegates full-text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]repository.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = repository.DefaultSearchLimit
	}
	hits, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]repository.SearchResult, len(hits))
	for i, h := range hits {
		out[i] = repository.SearchResult{ID: h.ID, Title: h.Title, Snippet: h.Snippet}
	}
	return out, nil
}

// IdeasLinking returns the ids of ideas that list url in any category.
func (s *Service) IdeasLinking(ctx context.Context, url string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.db.IdeasLinking(url)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Service) read(id string) (models.ContentIdea, error) {
	data, err := s.store.Read(codec.FileName(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ContentIdea{}, apperr.ErrNotFound
		}
		return models.ContentIdea{}, err
	}
	idea, err := codec.Decode(data)
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("ideaservice: decode %s: %w", id, err)
	}
	idea.ID = id
	return idea, nil
}

// write persists the file first, then the index entry. The checksum stored
// in the index matches the bytes on disk, so the watcher treats the write
// as already indexed.
func (s *Service) write(idea models.ContentIdea) error {
	data, err := codec.Encode(idea)
	if err != nil {
		return err
	}
	if err := s.store.Write(codec.FileName(idea.ID), data); err != nil {
		return err
	}
	return index.IndexFile(s.db, idea.ID, data)
}
