package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/autosave"
	"github.com/starford/socialgram/internal/linklist"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

// ErrNotLoaded is returned by mutations on a session that has no idea loaded.
var ErrNotLoaded = errors.New("editor: idea not loaded")

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where save, delete and load outcomes are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAutosaveIdle sets how long script edits wait before saving.
func WithAutosaveIdle(d time.Duration) Option {
	return func(s *Session) { s.idle = d }
}

// WithSaveTimeout bounds autosave updates, which run outside any request.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) { s.saveTimeout = d }
}

// Session is the edit workflow for one idea. It is safe for concurrent use.
// Repository calls run without the session lock held.
type Session struct {
	id          string
	repo        repository.Repository
	notifier    notify.Notifier
	logger      *slog.Logger
	idle        time.Duration
	saveTimeout time.Duration

	mu     sync.Mutex
	state  State
	script *autosave.Editor
}

// NewSession creates a session for idea id. Call Load before editing.
func NewSession(id string, repo repository.Repository, opts ...Option) *Session {
	s := &Session{
		id:          id,
		repo:        repo,
		notifier:    notify.Discard,
		logger:      slog.Default(),
		idle:        autosave.DefaultIdle,
		saveTimeout: 30 * time.Second,
		state:       InitialState(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the idea id this session edits.
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Idea = st.Idea.Clone()
	return st
}

func (s *Session) dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// Load fetches the idea. A missing idea moves the session to not-found,
// notifies the user and returns apperr.ErrNotFound.
func (s *Session) Load(ctx context.Context) (State, error) {
	idea, err := s.repo.FetchByID(ctx, s.id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		st := s.dispatch(NotFound{})
		s.notify(notify.NotFound)
		return st, apperr.ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller went away; leave the session untouched.
		return s.State(), err
	case err != nil:
		s.logger.Error("editor: load failed", slog.String("id", s.id), slog.String("error", err.Error()))
		st := s.dispatch(LoadFailed{Err: err})
		s.notify(notify.LoadFailed)
		return st, err
	}

	st := s.dispatch(Loaded{Idea: idea})

	s.mu.Lock()
	if s.script == nil {
		s.script = autosave.New(idea.Script, s.saveScript, autosave.WithIdle(s.idle))
	} else {
		s.script.Confirm(idea.Script)
	}
	s.mu.Unlock()
	return st, nil
}

// EditTitle records a title keystroke without persisting it.
func (s *Session) EditTitle(title string) State {
	return s.dispatch(TitleEdited{Title: title})
}

// CommitTitle persists the title draft. Any length is accepted, including
// empty, unlike creation.
func (s *Session) CommitTitle(ctx context.Context) (models.ContentIdea, error) {
	title := s.State().TitleDraft
	return s.Update(ctx, models.Patch{Title: &title})
}

// SetType persists a new content type.
func (s *Session) SetType(ctx context.Context, t models.ContentType) (models.ContentIdea, error) {
	return s.Update(ctx, models.Patch{Type: &t})
}

// SetCreativeStatus persists a new creative status.
func (s *Session) SetCreativeStatus(ctx context.Context, cs models.CreativeStatus) (models.ContentIdea, error) {
	return s.Update(ctx, models.Patch{CreativeStatus: &cs})
}

// SetProductionStage persists a new production stage.
func (s *Session) SetProductionStage(ctx context.Context, ps models.ProductionStage) (models.ContentIdea, error) {
	return s.Update(ctx, models.Patch{ProductionStage: &ps})
}

// SetLinks replaces one link list.
func (s *Session) SetLinks(ctx context.Context, c models.LinkCategory, links []string) (models.ContentIdea, error) {
	return s.Update(ctx, models.LinksPatch(c, links))
}

// AddLink appends input to the stored link list, so links saved by other
// writers are kept. Blank input is a no-op that returns the current idea.
func (s *Session) AddLink(ctx context.Context, c models.LinkCategory, input string) (models.ContentIdea, error) {
	cur, err := s.current(ctx)
	if err != nil {
		return models.ContentIdea{}, err
	}
	var next []string
	l := linklist.New(string(c), cur.Links(c), func(links []string) { next = links })
	l.SetInput(input)
	if !l.Add() {
		return cur, nil
	}
	return s.SetLinks(ctx, c, next)
}

// RemoveLink deletes the link at index i. An out-of-range index is a no-op.
func (s *Session) RemoveLink(ctx context.Context, c models.LinkCategory, i int) (models.ContentIdea, error) {
	cur, err := s.current(ctx)
	if err != nil {
		return models.ContentIdea{}, err
	}
	var next []string
	l := linklist.New(string(c), cur.Links(c), func(links []string) { next = links })
	if !l.Remove(i) {
		return cur, nil
	}
	return s.SetLinks(ctx, c, next)
}

// EditScript buffers a script edit. It is saved once edits stop for the
// autosave idle period.
func (s *Session) EditScript(value string) error {
	s.mu.Lock()
	script, phase := s.script, s.state.Phase
	s.mu.Unlock()
	if phase != PhaseFound || script == nil {
		return ErrNotLoaded
	}
	script.Edit(value)
	return nil
}

// ScriptStatus reports the buffered script, whether a save is pending and
// when the script was last autosaved.
type ScriptStatus struct {
	Value     string     `json:"-"`
	Pending   bool       `json:"pending"`
	LastSaved *time.Time `json:"lastSaved"`
}

// Script returns the autosave buffer state.
func (s *Session) Script() ScriptStatus {
	s.mu.Lock()
	script := s.script
	value := s.state.Idea.Script
	s.mu.Unlock()
	if script == nil {
		return ScriptStatus{Value: value}
	}
	st := ScriptStatus{Value: script.Value(), Pending: script.Pending()}
	if ts, ok := script.LastSaved(); ok {
		st.LastSaved = &ts
	}
	return st
}

// FlushScript saves a pending script edit immediately and reports whether
// a save ran.
func (s *Session) FlushScript() bool {
	s.mu.Lock()
	script := s.script
	s.mu.Unlock()
	if script == nil {
		return false
	}
	return script.Flush()
}

func (s *Session) saveScript(value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	_, _ = s.Update(ctx, models.Patch{Script: &value})
}

// SelectTab switches the visible section.
func (s *Session) SelectTab(t Tab) State {
	return s.dispatch(TabSelected{Tab: t})
}

// Update sends a partial update to the repository. Invalid enum values are
// rejected before any repository call with an *apperr.ValidationError.
// Repository failures notify "Error saving changes" and are not retried.
func (s *Session) Update(ctx context.Context, patch models.Patch) (models.ContentIdea, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return models.ContentIdea{}, err
	}
	if _, err := s.loaded(); err != nil {
		return models.ContentIdea{}, err
	}

	s.dispatch(SaveStarted{})
	idea, err := s.repo.Update(ctx, s.id, patch)
	if err != nil {
		s.logger.Warn("editor: save failed", slog.String("id", s.id), slog.String("error", err.Error()))
		s.dispatch(SaveFailed{Err: err})
		s.notify(notify.SaveFailed)
		return models.ContentIdea{}, err
	}

	s.dispatch(SaveSucceeded{Idea: idea})
	if patch.Script != nil {
		s.mu.Lock()
		script := s.script
		s.mu.Unlock()
		if script != nil {
			script.Confirm(idea.Script)
		}
	}
	s.notify(notify.Saved)
	return idea, nil
}

// Delete removes the idea when confirm is true; otherwise it does nothing
// and reports false. Pending script edits are discarded.
func (s *Session) Delete(ctx context.Context, confirm bool) (bool, error) {
	if !confirm {
		return false, nil
	}
	if _, err := s.loaded(); err != nil {
		return false, err
	}
	if err := s.repo.Delete(ctx, s.id); err != nil {
		s.logger.Warn("editor: delete failed", slog.String("id", s.id), slog.String("error", err.Error()))
		s.notify(notify.DeleteFail)
		return false, err
	}

	s.dispatch(Deleted{})
	s.stopScript()
	s.notify(notify.Deleted)
	return true, nil
}

// Close flushes any pending script edit and stops the autosave timer.
func (s *Session) Close() {
	s.FlushScript()
	s.stopScript()
}

func (s *Session) notify(n notify.Notification) {
	s.notifier.Notify(n.For(s.id))
}

func (s *Session) stopScript() {
	s.mu.Lock()
	script := s.script
	s.mu.Unlock()
	if script != nil {
		script.Stop()
	}
}

// current re-reads the idea from the repository and refreshes the session.
func (s *Session) current(ctx context.Context) (models.ContentIdea, error) {
	if _, err := s.loaded(); err != nil {
		return models.ContentIdea{}, err
	}
	idea, err := s.repo.FetchByID(ctx, s.id)
	if err != nil {
		return models.ContentIdea{}, err
	}
	s.dispatch(Refreshed{Idea: idea})
	return idea, nil
}

func (s *Session) loaded() (models.ContentIdea, error) {
	st := s.State()
	if st.Phase != PhaseFound {
		return models.ContentIdea{}, ErrNotLoaded
	}
	return st.Idea, nil
}
