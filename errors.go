package qpact

import "errors"

// HSM / QEP contract errors. Fatal unless noted — the offending goroutine
// should stop rather than limp on with an inconsistent state chart.
var (
	ErrNestDepthExceeded = errors.New("qpact: state chain depth exceeds MaxNestDepth")
	ErrInitNotCalled     = errors.New("qpact: initial state handler did not call InitTran")
	// ErrPayloadWrongType is not fatal: PayloadAs returns it as an ordinary
	// error.
	ErrPayloadWrongType = errors.New("qpact: event payload could not be converted to requested type")
)

// ActiveObject / Framework contract errors.
var (
	// ErrQueueOverflow is recoverable: the producer sees it as an ordinary
	// error return and may retry, drop, or escalate. The core never drops
	// an event silently.
	ErrQueueOverflow = errors.New("qpact: event queue overflow")

	ErrPriorityOutOfRange  = errors.New("qpact: priority out of range [1, QFMaxActive]")
	ErrPrioritySlotTaken   = errors.New("qpact: priority slot already registered")
	ErrPrioritySlotEmpty   = errors.New("qpact: priority slot is not registered")
	ErrNotSlotOwner        = errors.New("qpact: active object does not own its claimed priority slot")
	ErrFrameworkNotRunning = errors.New("qpact: framework is not running")
)

// TimeEvt arming errors.
var (
	ErrReservedSignal   = errors.New("qpact: timer signal must be >= UserSig")
	ErrNonPositiveTicks = errors.New("qpact: timer tick count must be > 0")
)

// Domain-stack scheduler errors (qpacttime.CronTimeEvt).
var (
	ErrUnknownJobSchedule = errors.New("qpact: cron schedule expression could not be parsed")
)
