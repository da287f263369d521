package audit

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultQueueSize is the number of events a Queue buffers
const DefaultQueueSize = 1024

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

// Queue hands events to an Emitter on a single background goroutine so
// sink latency never reaches the caller. When the buffer is full the
// event is dropped and a warning is logged.
type Queue struct {
	next   *Emitter
	events chan queuedEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts a queue in front of next
func NewQueue(next *Emitter, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		next:   next,
		events: make(chan queuedEvent, size),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for item := range q.events {
		q.next.Emit(item.ctx, item.ev)
	}
}

// Emit enqueues ev without waiting for the sinks. The timestamp is taken
// here so queueing delay does not shift it.
func (q *Queue) Emit(ctx context.Context, ev Event) {
	if q == nil || q.next == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = q.next.now().UTC()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.warn("audit queue closed, event dropped", ev)
		return
	}
	select {
	case q.events <- queuedEvent{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		q.warn("audit queue full, event dropped", ev)
	}
}

// Close stops accepting events and waits until the buffered ones are
// written. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) warn(msg string, ev Event) {
	q.next.logger.Warn(msg,
		slog.String("action", ev.Action),
		slog.String("resource_id", ev.ResourceID))
}
