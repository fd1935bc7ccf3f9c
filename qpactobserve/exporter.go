// Package qpactobserve exports qpact events as CloudEvents, grounded on
// GoCodeAlone-modular's use of cloudevents/sdk-go/v2 in its scheduler
// module (a job's firing is wrapped as a cloudevents.Event before being
// handed to its sink). Here every dispatched or published application
// event can optionally be mirrored out to an external event sink in the
// same envelope shape, independent of qpact's own in-process delivery.
package qpactobserve

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/qpact/qpact"
)

// EventSink receives exported CloudEvents. A typical implementation wraps
// a cloudevents.Client bound to an HTTP, Kafka, or NATS transport; the
// in-process-only default (see NewLogSink) just logs.
type EventSink interface {
	Send(ctx context.Context, ce cloudevents.Event) error
}

// Exporter wraps an EventSink and a source identifier, translating qpact
// events into CloudEvents 1.0 envelopes.
type Exporter struct {
	sink   EventSink
	source string
	logger qpact.Logger
}

// NewExporter builds an Exporter that stamps every exported event's
// `source` attribute with source (typically the owning ActiveObject's
// Name or ID).
func NewExporter(sink EventSink, source string) *Exporter {
	return &Exporter{sink: sink, source: source, logger: noopLogger{}}
}

// SetLogger attaches a Logger for send failures.
func (x *Exporter) SetLogger(l qpact.Logger) {
	if l == nil {
		l = noopLogger{}
	}
	x.logger = l
}

// Export converts e into a CloudEvent of type "qpact.event" carrying sig
// (already resolved to its numeric Signal value since qpact signals are
// process-local) and e.Payload as JSON-ish data, then hands it to the
// sink. Errors are logged, not returned, so exporting never blocks the
// active object whose dispatch triggered it — this is a side channel.
func (x *Exporter) Export(ctx context.Context, e *qpact.Event) {
	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(x.source)
	ce.SetType("qpact.event")
	ce.SetTime(time.Now())
	if err := ce.SetData(cloudevents.ApplicationJSON, exportedPayload{Signal: uint32(e.Sig), Payload: e.Payload}); err != nil {
		x.logger.Error("qpactobserve: failed to encode event", "error", err)
		return
	}
	if err := x.sink.Send(ctx, ce); err != nil {
		x.logger.Error("qpactobserve: sink send failed", "error", err)
	}
}

type exportedPayload struct {
	Signal  uint32 `json:"signal"`
	Payload any    `json:"payload,omitempty"`
}

// logSink is the zero-dependency default EventSink, used when no real
// transport has been configured.
type logSink struct{ logger qpact.Logger }

// NewLogSink returns an EventSink that logs every CloudEvent it receives
// instead of forwarding it anywhere.
func NewLogSink(logger qpact.Logger) EventSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &logSink{logger: logger}
}

func (s *logSink) Send(_ context.Context, ce cloudevents.Event) error {
	s.logger.Info("qpactobserve: event", "id", ce.ID(), "type", ce.Type(), "source", ce.Source())
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
