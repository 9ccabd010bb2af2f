package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
)

// Latency is the artificial delay the mock applies to each call.
type Latency struct {
	FetchAll time.Duration `yaml:"fetch_all"`
	FetchOne time.Duration `yaml:"fetch_one"`
	Insert   time.Duration `yaml:"insert"`
	Update   time.Duration `yaml:"update"`
	Delete   time.Duration `yaml:"delete"`
}

// MockLatency reproduces the delays of the original hosted-service mock.
var MockLatency = Latency{
	FetchAll: 800 * time.Millisecond,
	FetchOne: 400 * time.Millisecond,
	Insert:   500 * time.Millisecond,
	Update:   300 * time.Millisecond,
	Delete:   400 * time.Millisecond,
}

// MemoryOption configures a Memory repository.
type MemoryOption func(*Memory)

// WithSeed preloads ideas.
func WithSeed(ideas []models.ContentIdea) MemoryOption {
	return func(m *Memory) {
		for _, idea := range ideas {
			idea = idea.Clone()
			idea.Normalize()
			m.ideas[idea.ID] = idea
		}
	}
}

// WithLatency sets the simulated delay per operation.
func WithLatency(l Latency) MemoryOption {
	return func(m *Memory) { m.latency = l }
}

// WithClock overrides the clock used to stamp updates.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// Memory is an in-process Repository. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	ideas   map[string]models.ContentIdea
	latency Latency
	now     func() time.Time
}

var (
	_ Repository = (*Memory)(nil)
	_ Searcher   = (*Memory)(nil)
)

// NewMemory creates an empty in-memory repository.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		ideas: make(map[string]models.ContentIdea),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchAll returns every idea, most recently updated first.
func (m *Memory) FetchAll(ctx context.Context) ([]models.ContentIdea, error) {
	if err := wait(ctx, m.latency.FetchAll); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]models.ContentIdea, 0, len(m.ideas))
	for _, idea := range m.ideas {
		out = append(out, idea.Clone())
	}
	m.mu.RUnlock()
	SortByUpdated(out)
	return out, nil
}

// FetchByID returns one idea.
func (m *Memory) FetchByID(ctx context.Context, id string) (models.ContentIdea, error) {
	if err := wait(ctx, m.latency.FetchOne); err != nil {
		return models.ContentIdea{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idea, ok := m.ideas[id]
	if !ok {
		return models.ContentIdea{}, apperr.ErrNotFound
	}
	return idea.Clone(), nil
}

// Insert stores a new idea.
func (m *Memory) Insert(ctx context.Context, idea models.ContentIdea) (models.ContentIdea, error) {
	if idea.ID == "" {
		return models.ContentIdea{}, fmt.Errorf("memory: insert: id is required")
	}
	if err := wait(ctx, m.latency.Insert); err != nil {
		return models.ContentIdea{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[idea.ID]; ok {
		return models.ContentIdea{}, apperr.ErrAlreadyExists
	}
	idea = idea.Clone()
	idea.Normalize()
	m.ideas[idea.ID] = idea
	return idea.Clone(), nil
}

// Update merges patch into the stored idea.
func (m *Memory) Update(ctx context.Context, id string, patch models.Patch) (models.ContentIdea, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return models.ContentIdea{}, err
	}
	if err := wait(ctx, m.latency.Update); err != nil {
		return models.ContentIdea{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idea, ok := m.ideas[id]
	if !ok {
		return models.ContentIdea{}, apperr.ErrNotFound
	}
	idea = idea.Apply(patch, m.now())
	m.ideas[id] = idea
	return idea.Clone(), nil
}

// Delete removes an idea.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := wait(ctx, m.latency.Delete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.ideas, id)
	return nil
}

// Search matches query case-insensitively against titles and scripts.
func (m *Memory) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	all, err := m.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []SearchResult
	for _, idea := range all {
		if !strings.Contains(strings.ToLower(idea.Title), q) && !strings.Contains(strings.ToLower(idea.Script), q) {
			continue
		}
		out = append(out, SearchResult{ID: idea.ID, Title: idea.Title, Snippet: Snippet(idea.Script, 200)})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// SortByUpdated orders ideas most recently updated first, then by ID.
func SortByUpdated(ideas []models.ContentIdea) {
	sort.SliceStable(ideas, func(i, j int) bool {
		if !ideas[i].UpdatedAt.Equal(ideas[j].UpdatedAt) {
			return ideas[i].UpdatedAt.After(ideas[j].UpdatedAt)
		}
		return ideas[i].ID < ideas[j].ID
	})
}

// Snippet returns at most n runes of s.
func Snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
