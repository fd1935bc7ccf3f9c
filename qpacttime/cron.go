// Package qpacttime supplements qpact's tick-based TimeEvt with wall-clock
// cron scheduling, grounded on GoCodeAlone-modular's scheduler module
// (modules/scheduler/scheduler.go), which wraps robfig/cron/v3 the same
// way: parse a schedule expression once at registration time, let the cron
// library own the wall-clock timer goroutine, and translate each firing
// into this framework's own event shape.
package qpacttime

import (
	"fmt"

	"github.com/qpact/qpact"
	"github.com/robfig/cron/v3"
)

// CronTimeEvt posts sig to target on a standard five-field cron schedule,
// independent of the Framework's tick cadence. Where TimeEvt models
// "after N ticks" and "every N ticks", CronTimeEvt models "at these
// wall-clock moments" — e.g. nightly maintenance signals for a long-lived
// active object that also reacts to ordinary application events.
type CronTimeEvt struct {
	sched   *cron.Cron
	entryID cron.EntryID
	sig     qpact.Signal
	target  *qpact.ActiveObject
	expr    string
	removed bool
}

// NewCronTimeEvt parses expr (standard five-field cron syntax) and returns
// an armed CronTimeEvt that will call target.PostFIFO with an event of
// signal sig at each matching wall-clock moment, starting from the moment
// of construction. sig must be >= qpact.UserSig.
func NewCronTimeEvt(target *qpact.ActiveObject, sig qpact.Signal, expr string) (*CronTimeEvt, error) {
	if sig < qpact.UserSig {
		return nil, qpact.ErrReservedSignal
	}
	parsed, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", qpact.ErrUnknownJobSchedule, expr, err)
	}

	te := &CronTimeEvt{
		sched:  cron.New(),
		sig:    sig,
		target: target,
		expr:   expr,
	}
	te.entryID = te.sched.Schedule(parsed, cron.FuncJob(te.fire))
	te.sched.Start()
	return te, nil
}

func (te *CronTimeEvt) fire() {
	_ = te.target.PostFIFO(qpact.NewEvent(te.sig, nil))
}

// Disarm stops the cron schedule. Idempotent.
func (te *CronTimeEvt) Disarm() {
	if te.removed {
		return
	}
	te.sched.Remove(te.entryID)
	ctx := te.sched.Stop()
	<-ctx.Done()
	te.removed = true
}

// Expr returns the cron expression this timer was armed with.
func (te *CronTimeEvt) Expr() string { return te.expr }
