// Package repository defines the record-store abstraction content ideas are
// persisted through, plus the in-memory and Postgres implementations.
package repository

import (
	"context"

	"github.com/starford/socialgram/internal/models"
)

// Repository is the CRUD surface over the idea collection, keyed by ID.
type Repository interface {
	// FetchAll returns every idea, most recently updated first.
	FetchAll(ctx context.Context) ([]models.ContentIdea, error)
	// FetchByID returns the idea with id or apperr.ErrNotFound.
	FetchByID(ctx context.Context, id string) (models.ContentIdea, error)
	// Insert stores a new idea. Returns apperr.ErrAlreadyExists on ID collision.
	Insert(ctx context.Context, idea models.ContentIdea) (models.ContentIdea, error)
	// Update merges patch into the stored idea and stamps a fresh UpdatedAt.
	Update(ctx context.Context, id string, patch models.Patch) (models.ContentIdea, error)
	// Delete removes the idea with id or returns apperr.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// SearchResult is one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Searcher is implemented by repositories that support text search over
// titles and scripts.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 20

// LinkFinder is implemented by repositories that can report which ideas
// reference a URL in any link list.
type LinkFinder interface {
	IdeasLinking(ctx context.Context, url string) ([]string, error)
}
