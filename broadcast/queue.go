package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// Queue is one client's bounded outbound mailbox. A full queue drops the
// newest message rather than blocking the writer goroutine that produced
// it — generalizing coreengine/kernel/rate_limiter.go's sliding-window
// admission control from bounding an inbound request rate to bounding
// an outbound backlog depth.
type Queue struct {
	ch      chan wire.Message
	dropped atomic.Uint64
}

// NewQueue returns a queue buffering up to capacity messages.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan wire.Message, capacity)}
}

// Emit implements Writer. It never blocks.
func (q *Queue) Emit(m wire.Message) {
	select {
	case q.ch <- m:
	default:
		q.dropped.Add(1)
	}
}

// Messages returns the channel a session's write loop drains.
func (q *Queue) Messages() <-chan wire.Message {
	return q.ch
}

// Dropped reports how many messages were discarded because the queue
// was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close closes the underlying channel. Callers must not Emit after Close.
func (q *Queue) Close() {
	close(q.ch)
}

// ClientID is the opaque per-connection handle a Hub keys queues by.
type ClientID string

// Hub fans a single emitted message out to every registered client
// queue, implementing Writer for whole-document broadcasts (spec.md
// §4.5's "every create/update/delete of every live component").
type Hub struct {
	mu      sync.RWMutex
	clients map[ClientID]*Queue
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: map[ClientID]*Queue{}}
}

// Register adds a new client queue of the given capacity and returns it.
func (h *Hub) Register(client ClientID, capacity int) *Queue {
	q := NewQueue(capacity)
	h.mu.Lock()
	h.clients[client] = q
	h.mu.Unlock()
	return q
}

// Unregister removes and closes a client's queue, used on disconnect
// (spec.md §4.5 "drop per-client state").
func (h *Hub) Unregister(client ClientID) {
	h.mu.Lock()
	q, ok := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()
	if ok {
		q.Close()
	}
}

// Emit implements Writer: broadcast to every registered client.
func (h *Hub) Emit(m wire.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, q := range h.clients {
		q.Emit(m)
	}
}

// EmitTo delivers m to a single client, used for targeted method replies
// and signal fan-out restricted to subscribers.
func (h *Hub) EmitTo(client ClientID, m wire.Message) {
	h.mu.RLock()
	q, ok := h.clients[client]
	h.mu.RUnlock()
	if ok {
		q.Emit(m)
	}
}

// ClientIDs returns every currently registered client, for
// introspection/tests.
func (h *Hub) ClientIDs() []ClientID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ClientID, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}
