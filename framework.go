package qpact

import (
	"fmt"
	"sync"
)

// Framework is the process-wide active-object registry, publish/subscribe
// bus, and tick source, grounded on qf.py's QF class. A real application
// constructs exactly one Framework and shares it across every
// ActiveObject/TimeEvt it creates; tests may construct several in
// isolation.
//
// qf.py's Python original uses a single recursive lock because Publish
// re-enters post_fifo while still holding it. The Go port's
// ActiveObject.PostFIFO never touches Framework state (it only touches its
// own EventQueue), so Publish can hold a plain sync.Mutex for its whole
// body without ever re-entering it — see DESIGN.md.
type Framework struct {
	mu    sync.Mutex
	slots [QFMaxActive + 1]*ActiveObject // index 0 unused; priorities run 1..QFMaxActive
	subs  map[Signal]map[*ActiveObject]bool

	timers  map[*TimeEvt]bool
	tickNum uint64

	running bool
	stopCh  chan struct{}
	logger  Logger
}

// NewFramework constructs an empty, not-yet-running Framework.
func NewFramework() *Framework {
	return &Framework{
		subs:   make(map[Signal]map[*ActiveObject]bool),
		timers: make(map[*TimeEvt]bool),
		logger: noopLogger{},
	}
}

// SetLogger attaches a Logger to the Framework. No Framework method writes
// to it: start, stop and queue-overflow diagnostics are logged by each
// ActiveObject through its own Logger, and registration, publish and tick
// emit no log records.
func (fw *Framework) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	fw.mu.Lock()
	fw.logger = l
	fw.mu.Unlock()
}

// add claims ao.Priority in the slot table. Called by ActiveObject.Start;
// application code does not call this directly.
func (fw *Framework) add(ao *ActiveObject) error {
	if ao.Priority < 1 || ao.Priority > QFMaxActive {
		return fmt.Errorf("%w: got %d", ErrPriorityOutOfRange, ao.Priority)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.slots[ao.Priority] != nil {
		return fmt.Errorf("%w: priority %d", ErrPrioritySlotTaken, ao.Priority)
	}
	fw.slots[ao.Priority] = ao
	return nil
}

// remove releases ao's priority slot and all of its subscriptions. Called
// by ActiveObject.loop on exit. If no active object remains registered
// afterward, the framework stops itself, mirroring qf.py's QF.remove
// ("for active in cls._active: if active: return" / else "cls.stop()").
func (fw *Framework) remove(ao *ActiveObject) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.slots[ao.Priority] == ao {
		fw.slots[ao.Priority] = nil
	}
	for sig, subscribers := range fw.subs {
		delete(subscribers, ao)
		if len(subscribers) == 0 {
			delete(fw.subs, sig)
		}
	}

	for _, slot := range fw.slots {
		if slot != nil {
			return
		}
	}
	if fw.running {
		fw.running = false
		close(fw.stopCh)
	}
}

// ownsSlot reports whether ao currently occupies its declared Priority
// slot, the precondition ActiveObject.Subscribe/Unsubscribe/PublishFrom
// enforce before touching the subscriber table.
func (fw *Framework) ownsSlot(ao *ActiveObject) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return ao.Priority >= 1 && ao.Priority <= QFMaxActive && fw.slots[ao.Priority] == ao
}

// Subscribe registers ao to receive every future Publish of sig.
func (fw *Framework) Subscribe(ao *ActiveObject, sig Signal) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	set, ok := fw.subs[sig]
	if !ok {
		set = make(map[*ActiveObject]bool)
		fw.subs[sig] = set
	}
	set[ao] = true
}

// Unsubscribe reverses Subscribe.
func (fw *Framework) Unsubscribe(ao *ActiveObject, sig Signal) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if set, ok := fw.subs[sig]; ok {
		delete(set, ao)
		if len(set) == 0 {
			delete(fw.subs, sig)
		}
	}
}

// Publish posts e to every active object currently subscribed to e.Sig.
// Unlike ActiveObject.PostFIFO, Publish always consults the subscriber
// table; a subscriber whose queue is full logs the overflow (via its own
// Logger) and is skipped rather than blocking the publisher.
func (fw *Framework) Publish(e *Event) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for ao := range fw.subs[e.Sig] {
		_ = ao.PostFIFO(e)
	}
}

// armTimer registers te so Tick advances it. Called by TimeEvt.arm.
func (fw *Framework) armTimer(te *TimeEvt) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.timers[te] = true
}

// disarmTimer removes te from the tick list. Called by TimeEvt.Disarm.
func (fw *Framework) disarmTimer(te *TimeEvt) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	delete(fw.timers, te)
}

// Tick advances every armed TimeEvt by one tick, firing (posting or
// publishing) any that reach zero and either disarming it and removing it
// from the tick list (one-shot) or reloading it (periodic). Applications call Tick on a fixed cadence
// (spec default 10ms) from a single dedicated goroutine; Tick is not
// reentrant-safe with itself, only with concurrent Publish/PostFIFO.
func (fw *Framework) Tick() {
	fw.mu.Lock()
	fw.tickNum++
	due := make([]*TimeEvt, 0)
	for te := range fw.timers {
		if te.tick() {
			due = append(due, te)
			te.mu.Lock()
			oneShot := !te.armed
			te.mu.Unlock()
			if oneShot {
				delete(fw.timers, te)
			}
		}
	}
	fw.mu.Unlock()

	for _, te := range due {
		te.fire()
	}
}

// GetTime returns the number of Tick calls observed so far.
func (fw *Framework) GetTime() uint64 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.tickNum
}

// Run marks the framework running and blocks, calling Tick once per
// interval from tickCh, until Stop is called or tickCh is closed.
// Applications that want external control over the tick source (e.g. a
// test using a manual channel) drive Tick themselves instead of calling
// Run.
func (fw *Framework) Run(tickCh <-chan struct{}) {
	fw.mu.Lock()
	fw.running = true
	fw.stopCh = make(chan struct{})
	stopCh := fw.stopCh
	fw.mu.Unlock()

	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-tickCh:
			if !ok {
				return
			}
			fw.Tick()
		}
	}
}

// Stop ends a Run loop. Safe to call even if Run was never started.
func (fw *Framework) Stop() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.running {
		return
	}
	fw.running = false
	close(fw.stopCh)
}

// QueueMargins reports, for every currently-registered active object, the
// spare capacity remaining between its queue's high-water mark and its
// capacity — supplemented telemetry beyond the original spec (see
// SPEC_FULL.md §5): a margin near zero is an early warning that an active
// object's queue is undersized for its offered load.
func (fw *Framework) QueueMargins() map[string]int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	margins := make(map[string]int)
	for _, ao := range fw.slots {
		if ao == nil {
			continue
		}
		margins[ao.Name] = ao.queue.Cap() - ao.queue.HighWater()
	}
	return margins
}

// ClearQueueMargins resets every registered active object's queue
// high-water mark, e.g. between test phases or reporting windows.
func (fw *Framework) ClearQueueMargins() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for _, ao := range fw.slots {
		if ao != nil {
			ao.queue.ResetHighWater()
		}
	}
}

// SlotInfo is a read-only snapshot of one occupied priority slot, the
// basis of qpactadmin's GET /active.
type SlotInfo struct {
	Priority  int    `json:"priority"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	QueueLen  int    `json:"queue_len"`
	QueueCap  int    `json:"queue_cap"`
	HighWater int    `json:"high_water"`
}

// Slots reports every occupied priority slot, ordered by priority, with
// each active object's queue depth and high-water mark alongside it.
func (fw *Framework) Slots() []SlotInfo {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	slots := make([]SlotInfo, 0, QFMaxActive)
	for priority, ao := range fw.slots {
		if ao == nil {
			continue
		}
		slots = append(slots, SlotInfo{
			Priority:  priority,
			Name:      ao.Name,
			ID:        ao.ID,
			QueueLen:  ao.queue.Len(),
			QueueCap:  ao.queue.Cap(),
			HighWater: ao.queue.HighWater(),
		})
	}
	return slots
}

// TimerInfo is a read-only snapshot of one armed TimeEvt, the basis of
// qpactadmin's GET /timers.
type TimerInfo struct {
	Signal   Signal `json:"signal"`
	Target   string `json:"target"`
	Periodic bool   `json:"periodic"`
}

// ArmedTimers reports every currently armed TimeEvt.
func (fw *Framework) ArmedTimers() []TimerInfo {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	timers := make([]TimerInfo, 0, len(fw.timers))
	for te := range fw.timers {
		timers = append(timers, te.info())
	}
	return timers
}
