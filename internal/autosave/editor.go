// Package autosave implements the debounced script editor buffer: edits are
// held locally and pushed upstream once the author stops typing.
package autosave

import (
	"sync"
	"time"
)

// DefaultIdle is how long the editor waits after the last edit before saving.
const DefaultIdle = time.Second

// Option configures an Editor.
type Option func(*Editor)

// WithIdle sets the idle period. Non-positive values keep the default.
func WithIdle(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.idle = d
		}
	}
}

// WithOnAutoSave registers a side-effect called after every automatic save.
func WithOnAutoSave(fn func()) Option {
	return func(e *Editor) { e.onAutoSave = fn }
}

// WithClock overrides the clock used for the "last saved" timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// Editor buffers edits and forwards the latest value through onChange after
// an idle period, if it differs from the last confirmed value. Rapid edits
// restart the timer, so only the final value of a burst is forwarded. There
// is no retry: a failed upstream update is the caller's concern.
type Editor struct {
	mu         sync.Mutex
	saveMu     sync.Mutex // orders onChange calls
	idle       time.Duration
	now        func() time.Time
	onChange   func(string)
	onAutoSave func()

	confirmed string
	buffer    string
	pending   bool
	timer     *time.Timer
	gen       uint64
	lastSaved time.Time
	stopped   bool
}

// New creates an Editor whose confirmed value is initial.
func New(initial string, onChange func(string), opts ...Option) *Editor {
	e := &Editor{
		idle:      DefaultIdle,
		now:       time.Now,
		onChange:  onChange,
		confirmed: initial,
		buffer:    initial,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit records a new buffered value and restarts the idle timer.
func (e *Editor) Edit(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.buffer = value
	e.pending = true
	e.gen++
	gen := e.gen
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.idle, func() { e.fire(gen) })
}

// Confirm sets the value the upstream owner currently holds. The buffer
// follows it unless an edit is pending.
func (e *Editor) Confirm(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmed = value
	if !e.pending {
		e.buffer = value
	}
}

// Flush saves a pending edit immediately. It reports whether onChange ran.
func (e *Editor) Flush() bool {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	value, ok := e.take()
	e.mu.Unlock()

	if ok {
		e.emit(value)
	}
	return ok
}

// Stop cancels any pending save. Later edits are ignored.
func (e *Editor) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.pending = false
	if e.timer != nil {
		e.timer.Stop()
	}
}

// Value returns the buffered value.
func (e *Editor) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

// Pending reports whether an edit is waiting for the idle timer.
func (e *Editor) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// LastSaved returns when the editor last forwarded a value, if ever.
func (e *Editor) LastSaved() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved, !e.lastSaved.IsZero()
}

func (e *Editor) fire(gen uint64) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if gen != e.gen || e.stopped {
		e.mu.Unlock()
		return
	}
	value, ok := e.take()
	e.mu.Unlock()

	if ok {
		e.emit(value)
	}
}

// take consumes the pending edit. Caller holds e.mu.
func (e *Editor) take() (string, bool) {
	if !e.pending {
		return "", false
	}
	e.pending = false
	if e.buffer == e.confirmed {
		return "", false
	}
	e.confirmed = e.buffer
	e.lastSaved = e.now()
	return e.buffer, true
}

func (e *Editor) emit(value string) {
	if e.onChange != nil {
		e.onChange(value)
	}
	if e.onAutoSave != nil {
		e.onAutoSave()
	}
}
