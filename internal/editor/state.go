// Package editor owns the edit-page workflow for a single content idea:
// loading, field-level partial updates, debounced script saves and
// confirmed deletion.
package editor

import (
	"github.com/starford/socialgram/internal/models"
)

// Phase is the lifecycle position of an edit session.
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseFound    Phase = "found"
	PhaseNotFound Phase = "not-found"
	PhaseFailed   Phase = "failed"
	PhaseDeleted  Phase = "deleted"
)

// Tab is one of the edit page sections.
type Tab string

const (
	TabScript    Tab = "script"
	TabResources Tab = "resources"
	TabLinks     Tab = "links"
)

// TabValues lists the tabs in display order.
var TabValues = []Tab{TabScript, TabResources, TabLinks}

// ParseTab returns the tab named s, or TabScript for anything unknown.
func ParseTab(s string) Tab {
	for _, t := range TabValues {
		if Tab(s) == t {
			return t
		}
	}
	return TabScript
}

// State is an immutable snapshot of an edit session.
type State struct {
	Phase Phase
	Idea  models.ContentIdea
	// TitleDraft is the title as typed; it is persisted only on commit.
	TitleDraft string
	Tab        Tab
	// InFlight counts updates awaiting the repository.
	InFlight  int
	LastError string
}

// Saving reports whether the saving indicator should be shown.
func (s State) Saving() bool { return s.InFlight > 0 }

// Action is an input to Reduce.
type Action interface{ action() }

type (
	// Loaded carries the fetched idea.
	Loaded struct{ Idea models.ContentIdea }
	// LoadFailed reports a fetch error other than not-found.
	LoadFailed struct{ Err error }
	// NotFound reports that no idea exists for the session id.
	NotFound struct{}
	// TitleEdited records a keystroke-level title change.
	TitleEdited struct{ Title string }
	// SaveStarted marks the start of a partial update.
	SaveStarted struct{}
	// SaveSucceeded carries the idea as stored after an update.
	SaveSucceeded struct{ Idea models.ContentIdea }
	// SaveFailed reports an update error.
	SaveFailed struct{ Err error }
	// TabSelected switches the visible section.
	TabSelected struct{ Tab Tab }
	// Deleted marks the idea as removed.
	Deleted struct{}
	// Refreshed carries the idea as currently stored, read outside a save.
	Refreshed struct{ Idea models.ContentIdea }
)

func (Loaded) action()        {}
func (LoadFailed) action()    {}
func (NotFound) action()      {}
func (TitleEdited) action()   {}
func (SaveStarted) action()   {}
func (SaveSucceeded) action() {}
func (SaveFailed) action()    {}
func (TabSelected) action()   {}
func (Deleted) action()       {}
func (Refreshed) action()     {}

// InitialState is the state of a session before Load.
func InitialState() State {
	return State{Phase: PhaseLoading, Tab: TabScript}
}

// Reduce returns the state that follows s after a. It never mutates s.
func Reduce(s State, a Action) State {
	next := s
	next.Idea = s.Idea.Clone()

	switch a := a.(type) {
	case Loaded:
		next.Phase = PhaseFound
		next.Idea = a.Idea.Clone()
		next.TitleDraft = a.Idea.Title
		next.LastError = ""

	case LoadFailed:
		next.Phase = PhaseFailed
		next.LastError = errString(a.Err)

	case NotFound:
		next.Phase = PhaseNotFound
		next.Idea = models.ContentIdea{}
		next.TitleDraft = ""

	case TitleEdited:
		if s.Phase == PhaseFound {
			next.TitleDraft = a.Title
		}

	case SaveStarted:
		if s.Phase == PhaseFound {
			next.InFlight++
		}

	case SaveSucceeded:
		if s.InFlight > 0 {
			next.InFlight--
		}
		if s.Phase != PhaseFound {
			break
		}
		// A draft that matches the stored title follows the new title;
		// an uncommitted draft is kept.
		if s.TitleDraft == s.Idea.Title {
			next.TitleDraft = a.Idea.Title
		}
		next.Idea = a.Idea.Clone()
		next.LastError = ""

	case SaveFailed:
		if s.InFlight > 0 {
			next.InFlight--
		}
		next.LastError = errString(a.Err)

	case TabSelected:
		next.Tab = a.Tab

	case Deleted:
		next.Phase = PhaseDeleted
		next.InFlight = 0

	case Refreshed:
		if s.Phase != PhaseFound {
			break
		}
		if s.TitleDraft == s.Idea.Title {
			next.TitleDraft = a.Idea.Title
		}
		next.Idea = a.Idea.Clone()
	}
	return next
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
