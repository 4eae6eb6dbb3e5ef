package game

import "time"

type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot timers. Rooms use it for every delayed transition
// so tests can fire them by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// timerSlot holds at most one pending timer. Every stop or re-arm bumps seq,
// so a callback that already left the runtime's queue sees a stale seq and
// does nothing.
type timerSlot struct {
	t   Timer
	seq uint64
}

func (s *timerSlot) stop() {
	s.seq++
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}

func (s *timerSlot) pending() bool { return s.t != nil }

// arm replaces whatever slot holds with fn after d. fn runs with the room
// locked; its events go to the dispatcher once the lock is released, still
// under the emit lock.
func (r *Room) arm(slot *timerSlot, d time.Duration, fn func() []Event) {
	slot.stop()
	want := slot.seq
	slot.t = r.opts.Scheduler.AfterFunc(d, func() {
		r.emitMu.Lock()
		defer r.emitMu.Unlock()
		r.mu.Lock()
		if r.closed || slot.seq != want {
			r.mu.Unlock()
			return
		}
		slot.t = nil
		events := fn()
		r.mu.Unlock()
		r.dispatch(events)
	})
}

func (r *Room) stopTimers() {
	r.turnTimer.stop()
	r.roundTimer.stop()
	r.phaseTimer.stop()
}

func (r *Room) dispatch(events []Event) {
	if len(events) == 0 || r.opts.Dispatcher == nil {
		return
	}
	r.opts.Dispatcher.Dispatch(r.Code, events)
}
