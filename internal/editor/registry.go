package editor

import (
	"context"
	"sync"
	"time"

	"github.com/starford/socialgram/internal/repository"
)

// Registry keeps one Session per idea id so that the web and JSON layers
// share drafts and autosave timers.
type Registry struct {
	repo repository.Repository
	opts []Option
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	used    time.Time
}

// NewRegistry creates a registry whose sessions use opts.
func NewRegistry(repo repository.Repository, opts ...Option) *Registry {
	return &Registry{
		repo:     repo,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open returns the session for id after (re)loading it. A session that
// fails to load is not kept; a missing idea yields apperr.ErrNotFound.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	s := r.session(id)
	if st, err := s.Load(ctx); err != nil {
		if st.Phase != PhaseFound {
			r.drop(id, s)
		}
		return s, err
	}
	return s, nil
}

// Get returns the session for id when one is open and loaded.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		e.used = r.now()
	}
	r.mu.Unlock()
	if !ok || e.session.State().Phase != PhaseFound {
		return nil, false
	}
	return e.session, true
}

// Forget closes and drops the session for id, if any.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.session.Close()
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close flushes and closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range sessions {
		e.session.Close()
	}
}

// Sweep closes sessions unused for longer than idle, saving their pending
// script edits, and reports how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	var stale []*Session
	for id, e := range r.sessions {
		if e.used.Before(cutoff) {
			stale = append(stale, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Evict runs Sweep every idle/2 until ctx is done. A non-positive idle
// keeps sessions forever.
func (r *Registry) Evict(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	every := idle / 2
	if every <= 0 {
		every = idle
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(idle)
		}
	}
}

func (r *Registry) session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(id, r.repo, r.opts...)}
		r.sessions[id] = e
	}
	e.used = r.now()
	return e.session
}

func (r *Registry) drop(id string, s *Session) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && e.session == s {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok && e.session == s {
		s.stopScript()
	}
}
