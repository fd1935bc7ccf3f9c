package qpact

import "sync"

// TimeEvt is an armable timer that posts or publishes an event to a target
// ActiveObject after a number of Framework ticks, optionally reloading for
// periodic delivery. Grounded on qf.py's TimeEvt (post_in/post_every,
// disarm/rearm).
type TimeEvt struct {
	fw     *Framework
	sig    Signal
	target *ActiveObject

	mu       sync.Mutex
	armed    bool
	ticks    int
	interval int // 0 for one-shot; > 0 reloads to this value after firing
	publish  bool
}

// NewTimeEvt constructs a disarmed timer that will deliver sig to target
// once armed. sig must be >= UserSig: the reserved signals are reserved
// for the HSM engine itself.
func NewTimeEvt(fw *Framework, target *ActiveObject, sig Signal) (*TimeEvt, error) {
	if sig < UserSig {
		return nil, ErrReservedSignal
	}
	return &TimeEvt{fw: fw, target: target, sig: sig}, nil
}

// PostIn arms a one-shot timer that calls target.PostFIFO after ticks
// Framework.Tick calls.
func (te *TimeEvt) PostIn(ticks int) error {
	return te.arm(ticks, 0, false)
}

// PostEvery arms a periodic timer that calls target.PostFIFO every ticks
// Framework.Tick calls, reloading indefinitely until Disarm.
func (te *TimeEvt) PostEvery(ticks int) error {
	return te.arm(ticks, ticks, false)
}

// PublishIn arms a one-shot timer that calls Framework.Publish (subject to
// the subscriber table) after ticks.
func (te *TimeEvt) PublishIn(ticks int) error {
	return te.arm(ticks, 0, true)
}

// PublishEvery arms a periodic timer that calls Framework.Publish every
// ticks, reloading indefinitely until Disarm.
func (te *TimeEvt) PublishEvery(ticks int) error {
	return te.arm(ticks, ticks, true)
}

func (te *TimeEvt) arm(ticks, interval int, publish bool) error {
	if ticks <= 0 {
		return ErrNonPositiveTicks
	}
	te.mu.Lock()
	te.ticks = ticks
	te.interval = interval
	te.publish = publish
	te.armed = true
	te.mu.Unlock()
	te.fw.armTimer(te)
	return nil
}

// Disarm stops the timer and reports whether it was armed beforehand.
// Idempotent: disarming an already-fired one-shot (or an already-disarmed
// timer) returns false.
func (te *TimeEvt) Disarm() bool {
	te.mu.Lock()
	was := te.armed
	te.armed = false
	te.mu.Unlock()
	te.fw.disarmTimer(te)
	return was
}

// Rearm resets the remaining tick count without changing the one-shot vs.
// periodic nature of the timer, re-arming it if it had already fired and
// disarmed itself. Returns whether the timer was already armed beforehand.
func (te *TimeEvt) Rearm(ticks int) (bool, error) {
	if ticks <= 0 {
		return false, ErrNonPositiveTicks
	}
	te.mu.Lock()
	was := te.armed
	te.ticks = ticks
	te.armed = true
	te.mu.Unlock()
	te.fw.armTimer(te)
	return was, nil
}

// tick decrements the remaining count by one tick. Called by
// Framework.Tick while holding the framework mutex; returns true when the
// timer has just reached zero and should fire.
func (te *TimeEvt) tick() bool {
	te.mu.Lock()
	defer te.mu.Unlock()
	if !te.armed {
		return false
	}
	te.ticks--
	if te.ticks > 0 {
		return false
	}
	if te.interval > 0 {
		te.ticks = te.interval
	} else {
		te.armed = false
	}
	return true
}

// info snapshots te for Framework.ArmedTimers. Called while fw.mu is held;
// acquires te.mu, consistent with the fw.mu-then-te.mu ordering tick() uses.
func (te *TimeEvt) info() TimerInfo {
	te.mu.Lock()
	defer te.mu.Unlock()
	return TimerInfo{
		Signal:   te.sig,
		Target:   te.target.Name,
		Periodic: te.interval > 0,
	}
}

// fire delivers the timer's event. Called by Framework.Tick outside the
// framework mutex, after collecting every timer due this tick.
func (te *TimeEvt) fire() {
	e := NewEvent(te.sig, nil)
	if te.publish {
		te.fw.Publish(e)
	} else {
		_ = te.target.PostFIFO(e)
	}
}
