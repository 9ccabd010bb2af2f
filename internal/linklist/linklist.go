// Package linklist implements the ordered URL list editor used for an idea's
// reference, deployment, shoot and edit links.
package linklist

import "strings"

// Add returns links with the trimmed input appended. Empty or
// whitespace-only input returns an unchanged copy and false.
func Add(links []string, input string) ([]string, bool) {
	v := strings.TrimSpace(input)
	out := make([]string, len(links), len(links)+1)
	copy(out, links)
	if v == "" {
		return out, false
	}
	return append(out, v), true
}

// Remove returns links without the element at index i. An out-of-range
// index returns an unchanged copy and false.
func Remove(links []string, i int) ([]string, bool) {
	if i < 0 || i >= len(links) {
		out := make([]string, len(links))
		copy(out, links)
		return out, false
	}
	out := make([]string, 0, len(links)-1)
	out = append(out, links[:i]...)
	return append(out, links[i+1:]...), true
}

// List is a stateful editor over a parent-owned sequence. It keeps only the
// pending input; the parent stays the source of truth and receives every
// replacement sequence through onChange.
type List struct {
	Title    string
	links    []string
	input    string
	onChange func([]string)
}

// New creates a List titled title showing links.
func New(title string, links []string, onChange func([]string)) *List {
	l := &List{Title: title, onChange: onChange}
	l.Reset(links)
	return l
}

// Links returns a copy of the displayed sequence.
func (l *List) Links() []string {
	out := make([]string, len(l.links))
	copy(out, l.links)
	return out
}

// Input returns the pending input value.
func (l *List) Input() string { return l.input }

// SetInput replaces the pending input value.
func (l *List) SetInput(v string) { l.input = v }

// Reset replaces the displayed sequence with a new value from the parent.
func (l *List) Reset(links []string) {
	l.links = make([]string, len(links))
	copy(l.links, links)
}

// Add appends the pending input. On success the input is cleared and
// onChange receives the full new sequence.
func (l *List) Add() bool {
	next, ok := Add(l.links, l.input)
	if !ok {
		return false
	}
	l.links = next
	l.input = ""
	l.notify()
	return true
}

// Remove deletes the element at index i and notifies the parent.
func (l *List) Remove(i int) bool {
	next, ok := Remove(l.links, i)
	if !ok {
		return false
	}
	l.links = next
	l.notify()
	return true
}

func (l *List) notify() {
	if l.onChange != nil {
		l.onChange(l.Links())
	}
}
