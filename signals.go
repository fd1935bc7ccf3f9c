package qpact

// Signal tags the kind of an Event. Signals are compared only for equality;
// ordering has no meaning.
type Signal uint32

// Reserved signals drive the HSM engine itself and are never seen by
// application code outside a state handler's signal switch.
const (
	EMPTY Signal = iota // probe-only signal, used to discover a state's superstate
	ENTRY               // fired when a state is entered
	EXIT                // fired when a state is exited
	INIT                // fired to let a state drill into a substate
	TERM                // reserved, unused by the core; available for application shutdown signaling
)

// UserSig is the first signal value available to application code.
// Application signals must be >= UserSig.
const UserSig Signal = 4

// MaxNestDepth bounds the depth of any state's chain up to Top. Exceeding it
// during a transition is a programmer-contract violation (spec.md §7).
const MaxNestDepth = 6

// QFMaxActive is the largest priority an ActiveObject may register at.
// Priority 0 is reserved and never assigned.
const QFMaxActive = 63
