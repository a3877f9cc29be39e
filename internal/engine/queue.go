package engine

import (
	"sync"

	"github.com/roach88/boundary/internal/sphere"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeOpen starts a run from Config.
	EventTypeOpen EventType = iota + 1
	// EventTypeIngest feeds Input to an open run.
	EventTypeIngest
)

// String returns the lower-case event type name.
func (t EventType) String() string {
	switch t {
	case EventTypeOpen:
		return "open"
	case EventTypeIngest:
		return "ingest"
	default:
		return "unknown"
	}
}

// Event is a unit of work for the Run loop.
type Event struct {
	Type     EventType
	RunToken string
	Config   sphere.Config // EventTypeOpen only
	Input    sphere.Event  // EventTypeIngest only
}

// OpenEvent builds an event that starts run token from cfg.
func OpenEvent(token string, cfg sphere.Config) Event {
	return Event{Type: EventTypeOpen, RunToken: token, Config: cfg}
}

// IngestEvent builds an event that feeds in to run token.
func IngestEvent(token string, in sphere.Event) Event {
	return Event{Type: EventTypeIngest, RunToken: token, Input: in}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so producers (stdin readers, the test harness)
// never block on a slow store. Enqueue is safe from any goroutine while the
// Engine's Run loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64), // Pre-allocate for typical workloads
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Zero the slot so the backing array does not pin config strings.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *eventQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}
