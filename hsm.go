package qpact

import "fmt"

// State is a named state handler. Its identity is its pointer — states must
// be constructed once (typically as package-level vars) and never copied;
// LCA computation and IsIn rely on pointer equality exactly as the HSM's
// origin (a Python port of Miro Samek's QEP) relies on function-object
// identity.
type State struct {
	Name string
	run  func(h *HSM, e *Event) *State
}

// NewState constructs a named state. run must switch on e.Sig, handling at
// least ENTRY/EXIT (and INIT if the state has substates), and otherwise
// return the state's superstate for any signal it does not consume. run
// must return nil after calling h.Tran or h.InitTran, and nil is also how a
// state reports "no superstate" — only Top does that unconditionally.
func NewState(name string, run func(h *HSM, e *Event) *State) *State {
	return &State{Name: name, run: run}
}

// Top is the universal root of every state hierarchy. It consumes every
// event (including the EMPTY probe, where returning nil means "no further
// ancestor") and is never entered or exited.
var Top = NewState("top", func(*HSM, *Event) *State { return nil })

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingDynamic
)

// HSM is one hierarchical state machine instance: current state, the
// pending-transition flag TRAN/INIT set from inside a handler, and the
// initial pseudostate handler supplied at construction.
type HSM struct {
	current     *State
	pending     pendingKind
	initialFn   func(h *HSM, e *Event)
	initialized bool
	logger      Logger
}

// NewHSM constructs an HSM with the given initial pseudostate handler. The
// handler must call h.InitTran(target) exactly once and nothing else; Init
// panics with ErrInitNotCalled if it does not.
func NewHSM(initial func(h *HSM, e *Event)) *HSM {
	return &HSM{initialFn: initial, logger: noopLogger{}}
}

// SetLogger attaches a Logger. A nil HSM without one discards diagnostics
// silently — the HSM itself logs nothing by default; ActiveObject is what
// wires a real Logger in.
func (h *HSM) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	h.logger = l
}

// Current returns the active leaf state. Valid only after Init and outside
// of a handler invocation's internal bookkeeping.
func (h *HSM) Current() *State { return h.current }

// Tran sets the transition target and marks pending as dynamic. Call from
// inside a state handler, then return nil (handled) from that handler.
func (h *HSM) Tran(target *State) {
	h.current = target
	h.pending = pendingDynamic
}

// InitTran performs an initial-pseudostate transition: it moves current to
// target without marking a pending dynamic transition, since it is already
// running inside an entry sequence (Init, or the INIT drill-in inside
// execTran).
func (h *HSM) InitTran(target *State) {
	h.current = target
}

// trig probes state with a reserved signal and returns its result: nil for
// "handled" (or, for Top, "no superstate"), otherwise the superstate it
// delegated to.
func (h *HSM) trig(state *State, sig Signal) *State {
	return state.run(h, reservedEvent(sig))
}

func reservedEvent(sig Signal) *Event {
	switch sig {
	case EMPTY:
		return emptyEvent
	case ENTRY:
		return entryEvent
	case EXIT:
		return exitEvent
	case INIT:
		return initEvent
	default:
		panic(fmt.Sprintf("qpact: reservedEvent called with non-reserved signal %d", sig))
	}
}

// Init performs the one-time initial transition: invoke the initial
// pseudostate handler, then drill into the target (and any nested INIT it
// declares), firing ENTRY top-most first at each level. See spec §4.1.1.
func (h *HSM) Init(e *Event) {
	if h.initialized {
		panic("qpact: HSM.Init called more than once")
	}
	h.initialFn(h, e)
	if h.current == nil {
		panic(ErrInitNotCalled)
	}

	s := Top
	for {
		t := h.current
		path := []*State{t}
		for t != s {
			next := h.trig(t, EMPTY)
			if next == nil {
				panic(fmt.Errorf("qpact: %w: state %q has no superstate below top", ErrNestDepthExceeded, t.Name))
			}
			t = next
			if t != s {
				path = append([]*State{t}, path...)
			}
		}
		if len(path) > MaxNestDepth {
			panic(ErrNestDepthExceeded)
		}
		for _, st := range path {
			h.trig(st, ENTRY)
		}
		s = h.current
		if s == Top || h.trig(s, INIT) != nil {
			break
		}
	}
	h.initialized = true
}

// Dispatch processes one event to run-to-completion: invoke handlers up the
// hierarchy until one consumes it, then, if it declared a transition, exit
// from the original leaf up to the source, compute the LCA-based entry
// path, and enter down to the (possibly further-drilled) target. See
// spec §4.1.2.
func (h *HSM) Dispatch(e *Event) {
	var path [MaxNestDepth]*State
	t := h.current
	path[2] = t
	var s *State
	for t != nil {
		s = t
		t = s.run(h, e)
	}
	if h.pending == pendingNone {
		return
	}

	path[0] = h.current // transition target, set by Tran inside the handler
	h.current = path[2] // restore the original leaf for the exit walk below
	path[1] = s         // the state whose handler actually consumed the event

	walk := path[2]
	for walk != path[1] {
		next := h.trig(walk, EXIT)
		if next != nil {
			walk = next
		} else {
			walk = h.trig(walk, EMPTY)
		}
	}

	h.execTran(&path)
	h.pending = pendingNone
}

// IsIn reports whether state lies on the current ancestor chain up to Top.
func (h *HSM) IsIn(state *State) bool {
	s := h.current
	for s != state {
		s = h.trig(s, EMPTY)
		if s == nil {
			return false
		}
	}
	return true
}

// execTran resolves the LCA between path[1] (source) and path[0] (target)
// per the seven cases of spec §4.1.3, fires the exit/entry sequence, then
// drills into any nested INIT the target (or its descendants) declares.
//
// This is a line-for-line port of the reference QEP's exec_tran: the index
// bookkeeping (ip/iq walking the shared path array) is preserved exactly
// rather than rewritten with idiomatic slices, because the seven LCA cases
// are entangled with that bookkeeping in ways the canonical trace test
// (spec §8 scenario 1) checks character-for-character.
func (h *HSM) execTran(path *[MaxNestDepth]*State) {
	t := path[0]
	src := path[1]
	ip := -1

	if src == t {
		// (a) self-transition: exit then re-enter the same state.
		h.trig(src, EXIT)
		ip++
	} else {
		t = h.trig(t, EMPTY) // superstate(target)
		if src == t {
			// (b) target is a direct substate of source: still inside source.
			ip++
		} else {
			s := h.trig(src, EMPTY) // superstate(source)
			if s == t {
				// (c) source and target are siblings.
				h.trig(src, EXIT)
				ip++
			} else if s == path[0] {
				// (d) superstate(source) == target: exit only, enter nothing.
				h.trig(src, EXIT)
			} else {
				// (e)/(f)/(g): walk up from target looking for source, then
				// (failing that) walk up from source looking for an
				// ancestor of target.
				iq := 0
				ip += 2
				path[ip] = t
				t = h.trig(t, EMPTY)
				for t != nil {
					ip++
					path[ip] = t
					if t == src {
						// (e) target's ancestor chain reaches source directly.
						iq = 1
						if ip >= MaxNestDepth {
							panic(ErrNestDepthExceeded)
						}
						ip--
						t = nil
					} else {
						t = h.trig(t, EMPTY)
					}
				}
				if iq == 0 {
					if ip >= MaxNestDepth {
						panic(ErrNestDepthExceeded)
					}
					h.trig(src, EXIT)
					// (f) source's superstate is already in the collected
					// target-ancestor path.
					iq = ip
					for {
						if s == path[iq] {
							t = s
							ip = iq - 1
							iq = -1
						} else {
							iq--
						}
						if iq >= 0 {
							continue
						}
						break
					}
					if t == nil {
						// (g) general case: exit further up from source,
						// matching each ancestor against the target path.
						for {
							next := h.trig(s, EXIT)
							if next != nil {
								s = next
							} else {
								s = h.trig(s, EMPTY)
							}
							iq = ip
							for {
								if s == path[iq] {
									ip = iq - 1
									iq = -1
									s = nil
								} else {
									iq--
								}
								if iq >= 0 {
									continue
								}
								break
							}
							if s != nil {
								continue
							}
							break
						}
					}
				}
			}
		}
	}

	for i := ip; i >= 0; i-- {
		h.trig(path[i], ENTRY)
	}

	cur := path[0]
	h.current = cur
	for h.trig(cur, INIT) == nil {
		t := h.current
		path[0] = t
		ip = 0
		t = h.trig(t, EMPTY)
		for t != cur {
			ip++
			path[ip] = t
			t = h.trig(t, EMPTY)
		}
		if ip >= MaxNestDepth {
			panic(ErrNestDepthExceeded)
		}
		for i := ip; i >= 0; i-- {
			h.trig(path[i], ENTRY)
		}
		cur = h.current
	}
}
