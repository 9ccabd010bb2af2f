package index

import "github.com/starford/socialgram/internal/models"

// IdeaIndex defines the interface for idea indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type IdeaIndex interface {
	UpsertIdea(idea models.ContentIdea, checksum string) error
	DeleteIdea(id string) error
	GetIdea(id string) (models.ContentIdea, error)
	ListIdeas() ([]models.ContentIdea, error)
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	IdeasLinking(url string) ([]string, error)
	Close() error
}

// Verify *DB satisfies IdeaIndex at compile time.
var _ IdeaIndex = (*DB)(nil)
