package qpact

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ActiveObject binds one HSM to one EventQueue and one worker goroutine,
// exactly as qf.py's Active binds an Hsm to a QEQueue and a native thread.
// Each ActiveObject claims exactly one priority slot [1, QFMaxActive] in
// its Framework for as long as it runs.
type ActiveObject struct {
	ID       string
	Name     string
	Priority int

	hsm    *HSM
	queue  *EventQueue
	fw     *Framework
	logger Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewActiveObject wraps hsm in an ActiveObject. hsm must not yet be shared
// with any other ActiveObject or started.
func NewActiveObject(name string, hsm *HSM) *ActiveObject {
	return &ActiveObject{
		ID:     uuid.NewString(),
		Name:   name,
		hsm:    hsm,
		logger: noopLogger{},
	}
}

// SetLogger attaches a Logger used for lifecycle and overflow diagnostics,
// and propagates it to the underlying HSM.
func (a *ActiveObject) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	a.logger = l
	a.hsm.SetLogger(l)
}

// HSM exposes the underlying state machine, mainly for tests that want to
// assert IsIn/Current after a sequence of posts has drained.
func (a *ActiveObject) HSM() *HSM { return a.hsm }

// Done returns a channel closed once the worker goroutine has exited,
// whether it was stopped externally via Stop or asked to stop itself via
// RequestStop (e.g. from a terminal state's ENTRY handler).
func (a *ActiveObject) Done() <-chan struct{} { return a.done }

// Start registers the active object with fw at priority, allocates its
// event queue with room for queueSize pending events, runs the HSM's
// initial transition with initial as the triggering event, and launches
// the worker goroutine. Mirrors qf.py's Active.start.
func (a *ActiveObject) Start(fw *Framework, priority, queueSize int, initial *Event) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("qpact: active object %q already started", a.Name)
	}
	a.Priority = priority
	a.queue = NewEventQueue(queueSize)
	a.fw = fw
	a.done = make(chan struct{})
	a.running = true
	a.mu.Unlock()

	if err := fw.add(a); err != nil {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		return err
	}

	a.hsm.Init(initial)
	a.logger.Info("active object started", "name", a.Name, "id", a.ID, "priority", priority)

	go a.loop()
	return nil
}

// PostFIFO enqueues e for this active object without checking the
// publish/subscribe table, mirroring qf.py's direct Active.post_fifo path
// (as opposed to Framework.publish, which consults subscribers first).
func (a *ActiveObject) PostFIFO(e *Event) error {
	a.mu.Lock()
	q := a.queue
	a.mu.Unlock()
	if q == nil {
		return ErrFrameworkNotRunning
	}
	if err := q.PostFIFO(e); err != nil {
		a.logger.Error("queue overflow", "name", a.Name, "id", a.ID)
		return err
	}
	return nil
}

// Stop requests the worker goroutine to exit once it has dispatched every
// event queued ahead of the stop sentinel, and blocks until it has. Safe to call once, from any
// goroutine other than the active object's own worker — a state handler
// that wants to stop its own active object (e.g. qdpp's Philosopher.final)
// must call RequestStop instead, since Stop would otherwise deadlock
// waiting on the very goroutine that called it.
func (a *ActiveObject) Stop() {
	if !a.RequestStop() {
		return
	}
	<-a.done
}

// RequestStop asks the worker goroutine to exit once it has dispatched
// every event queued ahead of the stop sentinel, without blocking for it
// to do so. Safe to call
// from inside a state handler running on this active object's own worker
// goroutine. Returns false if the active object was already stopped or
// never started.
func (a *ActiveObject) RequestStop() bool {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return false
	}
	a.running = false
	q := a.queue
	a.mu.Unlock()

	if err := q.PostFIFO(nil); err != nil {
		// The queue is full: a helper goroutine delivers the nil sentinel as
		// soon as the worker frees a slot, so the worker still sees it.
		go func() { q.ch <- nil }()
	}
	return true
}

// Subscribe registers this active object to receive every future Publish
// of sig. Pre: sig >= UserSig, and the object currently owns its declared
// priority slot (i.e. it has been started and not yet stopped).
func (a *ActiveObject) Subscribe(sig Signal) error {
	if sig < UserSig {
		return ErrReservedSignal
	}
	a.mu.Lock()
	fw := a.fw
	a.mu.Unlock()
	if fw == nil || !fw.ownsSlot(a) {
		return ErrNotSlotOwner
	}
	fw.Subscribe(a, sig)
	return nil
}

// Unsubscribe reverses Subscribe, under the same preconditions.
func (a *ActiveObject) Unsubscribe(sig Signal) error {
	if sig < UserSig {
		return ErrReservedSignal
	}
	a.mu.Lock()
	fw := a.fw
	a.mu.Unlock()
	if fw == nil || !fw.ownsSlot(a) {
		return ErrNotSlotOwner
	}
	fw.Unsubscribe(a, sig)
	return nil
}

// PublishFrom multicasts e to every active object subscribed to e.Sig, on
// behalf of this active object. Pre: e.Sig >= UserSig, and the object
// currently owns its declared priority slot.
func (a *ActiveObject) PublishFrom(e *Event) error {
	if e.Sig < UserSig {
		return ErrReservedSignal
	}
	a.mu.Lock()
	fw := a.fw
	a.mu.Unlock()
	if fw == nil || !fw.ownsSlot(a) {
		return ErrNotSlotOwner
	}
	fw.Publish(e)
	return nil
}

func (a *ActiveObject) loop() {
	defer func() {
		if a.fw != nil {
			a.fw.remove(a)
		}
		a.logger.Info("active object stopped", "name", a.Name, "id", a.ID)
		close(a.done)
	}()
	for {
		e := a.queue.Take()
		if e == nil {
			return
		}
		a.hsm.Dispatch(e)
	}
}
