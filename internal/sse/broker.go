// Package sse implements a Server-Sent Events broker that pushes idea changes
// and notifications to connected browsers.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/socialgram/internal/notify"
)

// Event types sent to clients.
const (
	TypeIdeaCreated      = "idea.created"
	TypeIdeaUpdated      = "idea.updated"
	TypeIdeaDeleted      = "idea.deleted"
	TypeDashboardUpdated = "dashboard.updated"
	TypeNotification     = "notification"
)

// Event represents an SSE event to broadcast. An event with Idea set is
// delivered only to clients that subscribed to that idea.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	Idea string `json:"-"`
}

type subscription struct {
	ch   chan []byte
	idea string
}

type ideaEventReq struct {
	kind string
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + dashboard throttle timestamp). Public methods communicate with this
// loop through channels, so no mutexes are required.
type Broker struct {
	dashboardMin time.Duration
	heartbeat    time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	ideaEventCh   chan ideaEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

var _ notify.Notifier = (*Broker)(nil)

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets how often idle streams receive a comment line.
// Zero disables heartbeats.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// NewBroker creates a new SSE broker with the given dashboard throttle interval.
func NewBroker(dashboardThrottle time.Duration, opts ...Option) *Broker {
	if dashboardThrottle <= 0 {
		dashboardThrottle = 2 * time.Second
	}

	b := &Broker{
		dashboardMin:  dashboardThrottle,
		heartbeat:     25 * time.Second,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		ideaEventCh:   make(chan ideaEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}

	go b.run()
	return b
}

var ideaEventTypes = map[string]string{
	"created": TypeIdeaCreated,
	"updated": TypeIdeaUpdated,
	"deleted": TypeIdeaDeleted,
}

func (b *Broker) run() {
	defer close(b.stopped)

	// Client channel to the idea it watches, "" for none.
	clients := make(map[chan []byte]string)
	var seq uint64

	// Dashboard refreshes are leading-edge throttled; a change inside the
	// window is delivered once the window closes.
	var lastDashboard time.Time
	var trailing *time.Timer
	var trailingCh <-chan time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch, idea := range clients {
			if event.Idea != "" && event.Idea != idea {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	dashboard := func(now time.Time) {
		lastDashboard = now
		broadcast(Event{Type: TypeDashboardUpdated, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.idea

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.ideaEventCh:
			typ, ok := ideaEventTypes[req.kind]
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"id": req.id}})

			now := time.Now()
			if wait := b.dashboardMin - now.Sub(lastDashboard); wait > 0 {
				if trailingCh == nil {
					trailing = time.NewTimer(wait)
					trailingCh = trailing.C
				}
				continue
			}
			dashboard(now)

		case now := <-trailingCh:
			trailingCh = nil
			dashboard(now)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeIdea("")
}

// SubscribeIdea adds a client that also receives the notifications scoped
// to idea id.
func (b *Broker) SubscribeIdea(id string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, idea: id}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishIdeaEvent publishes an idea change and a throttled dashboard.updated
// event. kind is "created", "updated" or "deleted"; other kinds are ignored.
func (b *Broker) PublishIdeaEvent(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.ideaEventCh <- ideaEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// Notify broadcasts n as a notification event. Notifications about one idea
// reach only the clients watching it.
func (b *Broker) Notify(n notify.Notification) {
	b.Publish(Event{Type: TypeNotification, Data: n, Idea: n.IdeaID})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). The optional
// idea query parameter subscribes to that idea's notifications.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeIdea(r.URL.Query().Get("idea"))
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
