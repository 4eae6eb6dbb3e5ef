package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeScheduler records timers instead of running them; tests fire them.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) live() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the single pending timer of duration d.
func (s *fakeScheduler) fire(t *testing.T, d time.Duration) {
	t.Helper()
	s.claim(t, d).f()
}

// claim marks the pending timer of duration d fired and returns it without
// running its callback.
func (s *fakeScheduler) claim(t *testing.T, d time.Duration) *fakeTimer {
	t.Helper()
	for _, tm := range s.live() {
		if tm.d == d {
			s.mu.Lock()
			tm.fired = true
			s.mu.Unlock()
			return tm
		}
	}
	t.Fatalf("no pending timer of %s", d)
	return nil
}

type fakeWords struct {
	word    string
	invalid map[string]bool
	err     error
	picks   int
}

func (w *fakeWords) Pick(_ context.Context, length int) (string, error) {
	w.picks++
	if w.err != nil {
		return "", w.err
	}
	return w.word, nil
}

func (w *fakeWords) IsValid(_ context.Context, word string) bool {
	return !w.invalid[word]
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Dispatch(_ string, events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

const (
	startDelay    = 1500 * time.Millisecond
	turnDelay     = 350 * time.Millisecond
	gameOverDelay = 6 * time.Second
	turnLimit     = 15 * time.Second
)

type harness struct {
	rm    *Registry
	sched *fakeScheduler
	words *fakeWords
	disp  *recorder
}

func newHarness(word string) *harness {
	h := &harness{sched: &fakeScheduler{}, words: &fakeWords{word: word}, disp: &recorder{}}
	h.rm = NewRegistry(Options{
		Words:      h.words,
		Dispatcher: h.disp,
		Scheduler:  h.sched,
		Timing:     Timing{StartDelay: startDelay, TurnDelay: turnDelay, GameOverDelay: gameOverDelay},
		Shuffle:    func([]string) {}, // keep join order
	})
	return h
}

// playing creates a room with the given players and runs it up to the first turn.
func (h *harness) playing(t *testing.T, ids ...string) *Room {
	t.Helper()
	r, _ := h.rm.CreateRoom(ids[0], "P-"+ids[0])
	for _, id := range ids[1:] {
		if _, err := r.Join(id, "P-"+id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if _, err := r.StartGame(ids[0]); err != nil {
		t.Fatalf("start game: %v", err)
	}
	h.sched.fire(t, startDelay)
	h.sched.fire(t, turnDelay)
	h.disp.take()
	return r
}

func names(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name)
	}
	return out
}

func find(events []Event, name string) (Event, bool) {
	for _, e := range events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

func mustGuess(t *testing.T, r *Room, id, word string) []Event {
	t.Helper()
	events, err := r.SubmitGuess(context.Background(), id, word)
	if err != nil {
		t.Fatalf("guess %s by %s: %v", word, id, err)
	}
	return events
}

var errNoWords = errors.New("no words")
