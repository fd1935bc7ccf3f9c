package qpact

import (
	"reflect"

	"github.com/golobby/cast"
)

// Event is a tagged value carrying a Signal plus an optional, opaque
// payload. Reserved events (EMPTY/ENTRY/EXIT/INIT) are shared singleton
// instances that drive the HSM engine and carry no payload.
type Event struct {
	Sig     Signal
	Payload any
}

// NewEvent constructs an application event. Application code should not
// construct events with a reserved Sig (< UserSig); the engine owns those.
func NewEvent(sig Signal, payload any) *Event {
	return &Event{Sig: sig, Payload: payload}
}

// reserved singleton events, shared across all HSM instances. They carry no
// payload and must never be mutated.
var (
	emptyEvent = &Event{Sig: EMPTY}
	entryEvent = &Event{Sig: ENTRY}
	exitEvent  = &Event{Sig: EXIT}
	initEvent  = &Event{Sig: INIT}
)

// PayloadAs soft-converts an event's payload to T using golobby/cast,
// covering the common case where a payload crossed a boundary (config,
// environment, a generic decode) as a string or other near-miss type
// rather than arriving already typed.
func PayloadAs[T any](e *Event) (T, error) {
	var zero T
	if e.Payload == nil {
		return zero, nil
	}
	if v, ok := e.Payload.(T); ok {
		return v, nil
	}
	converted, err := cast.FromType(e.Payload, reflect.TypeOf(zero))
	if err != nil {
		return zero, err
	}
	v, ok := converted.(T)
	if !ok {
		return zero, ErrPayloadWrongType
	}
	return v, nil
}
