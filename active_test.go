package qpact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const blockSig Signal = UserSig + 100

// TestActiveObjectOverflow ports test_qf.py's
// TestActive.test_that_overflow_raises_exception: a queue of size one
// accepts one event, then a second post (while the first is still being
// handled) must fail with ErrQueueOverflow rather than block or drop.
func TestActiveObjectOverflow(t *testing.T) {
	block := make(chan struct{})
	released := make(chan struct{})

	leaf := NewState("leaf", func(h *HSM, e *Event) *State {
		switch e.Sig {
		case ENTRY, EXIT:
			return nil
		case blockSig:
			<-block
			close(released)
			return nil
		}
		return Top
	})

	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(leaf) })
	fw := NewFramework()
	ao := NewActiveObject("blocker", hsm)
	require.NoError(t, ao.Start(fw, 1, 1, nil))
	defer func() {
		close(block)
		<-released
		ao.Stop()
	}()

	require.NoError(t, ao.PostFIFO(NewEvent(blockSig, nil)))

	// Give the worker goroutine a chance to pull the first event off the
	// queue and block inside its handler, so the queue is empty again and
	// the next post can occupy its single slot.
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, ao.PostFIFO(NewEvent(UserSig, nil)))
	require.ErrorIs(t, ao.PostFIFO(NewEvent(UserSig, nil)), ErrQueueOverflow)
}

func TestFrameworkPublishSubscribe(t *testing.T) {
	var got []Signal
	done := make(chan struct{}, 8)

	leaf := NewState("leaf", func(h *HSM, e *Event) *State {
		switch e.Sig {
		case ENTRY, EXIT:
			return nil
		case EMPTY, INIT:
			return Top
		default:
			got = append(got, e.Sig)
			done <- struct{}{}
			return nil
		}
	})
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(leaf) })

	fw := NewFramework()
	ao := NewActiveObject("listener", hsm)
	require.NoError(t, ao.Start(fw, 1, 4, nil))
	defer ao.Stop()

	fw.Subscribe(ao, aSig)
	fw.Publish(NewEvent(aSig, nil))
	fw.Publish(NewEvent(bSig, nil)) // not subscribed, must not arrive

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}

	fw.Unsubscribe(ao, aSig)
	fw.Publish(NewEvent(aSig, nil))

	select {
	case <-done:
		t.Fatal("received event after Unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}

	require.Equal(t, []Signal{aSig}, got)
}

func TestFrameworkQueueMargins(t *testing.T) {
	leaf := NewState("leaf", func(h *HSM, e *Event) *State {
		if e.Sig == ENTRY || e.Sig == EXIT {
			return nil
		}
		return Top
	})
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(leaf) })

	fw := NewFramework()
	ao := NewActiveObject("margin", hsm)
	require.NoError(t, ao.Start(fw, 1, 8, nil))
	defer ao.Stop()

	margins := fw.QueueMargins()
	require.Equal(t, 8, margins["margin"])

	fw.ClearQueueMargins()
	require.Equal(t, 0, ao.queue.HighWater())
}

func TestTimeEvtPostEvery(t *testing.T) {
	target := make(chan Signal, 8)
	leaf := NewState("leaf", func(h *HSM, e *Event) *State {
		switch e.Sig {
		case ENTRY, EXIT:
			return nil
		case EMPTY, INIT:
			return Top
		default:
			target <- e.Sig
			return nil
		}
	})
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(leaf) })

	fw := NewFramework()
	ao := NewActiveObject("ticked", hsm)
	require.NoError(t, ao.Start(fw, 1, 8, nil))
	defer ao.Stop()

	const tickSig Signal = UserSig + 200
	te, err := NewTimeEvt(fw, ao, tickSig)
	require.NoError(t, err)
	require.NoError(t, te.PostEvery(2))
	defer te.Disarm()

	fw.Tick() // tick 1: not due yet
	select {
	case <-target:
		t.Fatal("fired before its interval elapsed")
	default:
	}

	fw.Tick() // tick 2: due
	select {
	case sig := <-target:
		require.Equal(t, tickSig, sig)
	case <-time.After(time.Second):
		t.Fatal("periodic timer never fired")
	}

	fw.Tick()
	fw.Tick() // another full interval: due again
	select {
	case sig := <-target:
		require.Equal(t, tickSig, sig)
	case <-time.After(time.Second):
		t.Fatal("periodic timer did not reload")
	}
}

func TestTimeEvtRejectsReservedSignal(t *testing.T) {
	fw := NewFramework()
	ao := NewActiveObject("x", NewHSM(func(h *HSM, e *Event) { h.InitTran(Top) }))
	_, err := NewTimeEvt(fw, ao, ENTRY)
	require.ErrorIs(t, err, ErrReservedSignal)
}

// TestTimeEvtDisarmReportsPriorArmedState ports qf.py's TimeEvt.disarm
// boundary behavior: disarming an armed timer reports true and removes it
// from the tick list; disarming it again, or disarming a one-shot that has
// already fired and self-disarmed, reports false.
func TestTimeEvtDisarmReportsPriorArmedState(t *testing.T) {
	target := make(chan Signal, 4)
	leaf := NewState("leaf", func(h *HSM, e *Event) *State {
		switch e.Sig {
		case ENTRY, EXIT:
			return nil
		case EMPTY, INIT:
			return Top
		default:
			target <- e.Sig
			return nil
		}
	})
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(leaf) })

	fw := NewFramework()
	ao := NewActiveObject("timer-owner", hsm)
	require.NoError(t, ao.Start(fw, 1, 4, nil))
	defer ao.Stop()

	const sig Signal = UserSig + 300
	te, err := NewTimeEvt(fw, ao, sig)
	require.NoError(t, err)

	require.NoError(t, te.PostIn(5))
	require.True(t, te.Disarm(), "disarming an armed timer must report true")
	require.False(t, te.Disarm(), "disarming an already-disarmed timer must report false")

	require.NoError(t, te.PostIn(1))
	fw.Tick() // fires the one-shot, which self-disarms
	select {
	case <-target:
	case <-time.After(time.Second):
		t.Fatal("one-shot timer never fired")
	}
	require.False(t, te.Disarm(), "disarming an already-fired one-shot must report false")
}

// TestTimeEvtRearmReportsPriorArmedState ports qf.py's TimeEvt.rearm
// boundary behavior: it reports whether the timer was already armed before
// the rearm took effect.
func TestTimeEvtRearmReportsPriorArmedState(t *testing.T) {
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(Top) })
	fw := NewFramework()
	ao := NewActiveObject("rearm-owner", hsm)
	require.NoError(t, ao.Start(fw, 1, 4, nil))
	defer ao.Stop()

	const sig Signal = UserSig + 301
	te, err := NewTimeEvt(fw, ao, sig)
	require.NoError(t, err)

	require.NoError(t, te.PostIn(5))
	was, err := te.Rearm(3)
	require.NoError(t, err)
	require.True(t, was, "rearming an armed timer must report true")

	te.Disarm()
	was, err = te.Rearm(3)
	require.NoError(t, err)
	require.False(t, was, "rearming a disarmed timer must report false")
}

// TestFrameworkAutoStopsWhenLastActiveObjectLeaves ports qf.py's
// QF.remove ("for active in cls._active: if active: return" / else
// "cls.stop()"): once the last registered active object's worker goroutine
// exits, a running Framework.Run loop must return on its own.
func TestFrameworkAutoStopsWhenLastActiveObjectLeaves(t *testing.T) {
	fw := NewFramework()
	hsm := NewHSM(func(h *HSM, e *Event) { h.InitTran(Top) })
	ao := NewActiveObject("solo", hsm)
	require.NoError(t, ao.Start(fw, 1, 1, nil))

	tickCh := make(chan struct{})
	runDone := make(chan struct{})
	go func() {
		fw.Run(tickCh)
		close(runDone)
	}()

	// Give Run a moment to mark the framework running before we tear down
	// its only active object.
	time.Sleep(10 * time.Millisecond)

	ao.Stop()

	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("framework did not auto-stop after its last active object was removed")
	}
}
