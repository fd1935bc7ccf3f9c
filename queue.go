package qpact

import "sync"

// EventQueue is a bounded FIFO of *Event, backed by a buffered channel so
// PostFIFO and Take can block/select alongside other channel operations.
// Grounded on qf.py's QEQueue (post_fifo tracks self._max = max(self._max,
// qsize()) and raises QueueOverflowError when full); the Go port reports
// overflow as an error return instead of a panic, since PostFIFO is called
// from arbitrary producer goroutines that should be able to recover.
type EventQueue struct {
	mu        sync.Mutex
	ch        chan *Event
	highWater int
}

// NewEventQueue allocates a queue with room for capacity pending events.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{ch: make(chan *Event, capacity)}
}

// PostFIFO enqueues e at the tail. Returns ErrQueueOverflow without
// blocking if the queue is full; never silently drops an event.
func (q *EventQueue) PostFIFO(e *Event) error {
	select {
	case q.ch <- e:
		q.mu.Lock()
		if n := len(q.ch); n > q.highWater {
			q.highWater = n
		}
		q.mu.Unlock()
		return nil
	default:
		return ErrQueueOverflow
	}
}

// Take blocks until an event is available and returns it. A nil *Event
// (the shutdown sentinel) signals the worker loop to exit; callers that
// receive it must not treat it as an ordinary event.
func (q *EventQueue) Take() *Event {
	return <-q.ch
}

// Chan exposes the underlying channel for select-based worker loops that
// need to multiplex against other wakeup sources (e.g. a tick channel).
func (q *EventQueue) Chan() <-chan *Event {
	return q.ch
}

// HighWater reports the largest number of events this queue has held at
// once since construction or the last ResetHighWater, mirroring qf.py's
// QEQueue._max watermark.
func (q *EventQueue) HighWater() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWater
}

// ResetHighWater zeroes the watermark.
func (q *EventQueue) ResetHighWater() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.highWater = 0
}

// Len reports the number of events currently queued.
func (q *EventQueue) Len() int {
	return len(q.ch)
}

// Cap reports the queue's fixed capacity.
func (q *EventQueue) Cap() int {
	return cap(q.ch)
}
