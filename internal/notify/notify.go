// Package notify carries the transient user feedback messages ("toasts")
// raised by editor and creation outcomes.
package notify

import "sync"

// Variant selects how a notification is styled.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is one user-visible message. IdeaID, when set, names the
// idea the message is about; only clients editing that idea receive it.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
	IdeaID      string  `json:"ideaId,omitempty"`
}

// For returns a copy of n scoped to idea id.
func (n Notification) For(id string) Notification {
	n.IdeaID = id
	return n
}

// Messages raised by the application.
var (
	Saved       = Notification{Title: "Changes saved", Description: "Your content idea has been updated.", Variant: VariantDefault}
	SaveFailed  = Notification{Title: "Error saving changes", Description: tryAgain, Variant: VariantDestructive}
	NotFound    = Notification{Title: "Idea not found", Description: "The content idea you're looking for doesn't exist.", Variant: VariantDestructive}
	LoadFailed  = Notification{Title: "Error fetching idea", Description: tryAgain, Variant: VariantDestructive}
	Deleted     = Notification{Title: "Idea deleted", Description: "Your content idea has been deleted.", Variant: VariantDefault}
	DeleteFail  = Notification{Title: "Error deleting idea", Description: tryAgain, Variant: VariantDestructive}
	Created     = Notification{Title: "Idea created!", Description: "Your content idea has been created successfully.", Variant: VariantDefault}
	CreateFail  = Notification{Title: "Error creating idea", Description: tryAgain, Variant: VariantDestructive}
	FetchFailed = Notification{Title: "Error fetching ideas", Description: "Please try again later", Variant: VariantDestructive}
)

const tryAgain = "Something went wrong. Please try again."

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to Notifier.
type Func func(Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to several notifiers in order.
func Multi(ns ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, x := range ns {
			if x != nil {
				x.Notify(n)
			}
		}
	})
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	got []Notification
}

// Notify records n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}

// Titles returns the recorded titles in order.
func (r *Recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Title
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.got = nil
	r.mu.Unlock()
}
