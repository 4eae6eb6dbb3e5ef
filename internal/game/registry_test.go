package game

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	rm := NewRegistry(Options{Words: &fakeWords{word: "CRANE"}})
	if rm.rooms == nil {
		t.Fatal("rooms map should be initialized")
	}
	if rm.opts.Scheduler == nil || rm.opts.Shuffle == nil {
		t.Fatal("defaults should be filled in")
	}
	if rm.opts.Defaults != DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", rm.opts.Defaults)
	}
}

func TestCreateRoom(t *testing.T) {
	h := newHarness("CRANE")
	r, events := h.rm.CreateRoom("a", "Alice")

	if len(r.Code) != codeLength {
		t.Fatalf("expected %d char code, got %q", codeLength, r.Code)
	}
	for _, c := range r.Code {
		if !strings.ContainsRune(codeAlphabet, c) {
			t.Fatalf("code %q has a character outside the alphabet", r.Code)
		}
	}
	got, err := h.rm.Get(r.Code)
	if err != nil || got != r {
		t.Fatalf("should be able to retrieve created room: %v", err)
	}
	if r.HostID() != "a" {
		t.Fatalf("creator should be host, got %s", r.HostID())
	}
	if r.Status() != StatusLobby {
		t.Fatalf("expected lobby, got %s", r.Status())
	}
	if len(events) != 1 || events[0].Name != EventRoomCreated || events[0].To != "a" {
		t.Fatalf("expected room_created to the creator, got %+v", events)
	}
}

func TestRoomCodesUnique(t *testing.T) {
	h := newHarness("CRANE")
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		r, _ := h.rm.CreateRoom("p", "P")
		if seen[r.Code] {
			t.Fatalf("duplicate live code %s", r.Code)
		}
		seen[r.Code] = true
	}
	if h.rm.Count() != 500 {
		t.Fatalf("expected 500 rooms, got %d", h.rm.Count())
	}
}

func TestJoinRoom(t *testing.T) {
	h := newHarness("CRANE")
	r, _ := h.rm.CreateRoom("a", "Alice")

	if _, _, err := h.rm.JoinRoom("NOPE42", "b", "Bob"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	_, events, err := h.rm.JoinRoom(r.Code, "b", "Bob")
	if err != nil {
		t.Fatalf("should be able to join: %v", err)
	}
	if len(events) != 2 || events[0].Name != EventRoomJoined || events[0].To != "b" {
		t.Fatalf("expected room_joined to joiner, got %+v", events)
	}
	if events[1].Name != EventPlayerJoined || events[1].Except != "b" {
		t.Fatalf("expected player_joined to everyone else, got %+v", events[1])
	}

	// rejoin with the same id is idempotent
	_, events, err = h.rm.JoinRoom(r.Code, "b", "Bob")
	if err != nil || len(events) != 1 || events[0].Name != EventRoomJoined {
		t.Fatalf("rejoin should only repeat the snapshot, got %v / %v", names(events), err)
	}
	if n := r.Summary().PlayerCount; n != 2 {
		t.Fatalf("expected 2 players, got %d", n)
	}
}

func TestJoinRoomFull(t *testing.T) {
	h := newHarness("CRANE")
	r, _ := h.rm.CreateRoom("p0", "P0")
	for i := 1; i < MaxPlayers; i++ {
		if _, _, err := h.rm.JoinRoom(r.Code, string(rune('a'+i)), "P"); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, _, err := h.rm.JoinRoom(r.Code, "late", "Late"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestUpdateSettingsMissingRoom(t *testing.T) {
	h := newHarness("CRANE")
	if events := h.rm.UpdateSettings("ZZZZZZ", "a", SettingsPatch{WordLength: ptr(6)}); events != nil {
		t.Fatalf("expected silent ignore, got %v", names(events))
	}
}

func TestHostFailover(t *testing.T) {
	h := newHarness("CRANE")
	r, _ := h.rm.CreateRoom("a", "Alice")
	r.Join("b", "Bob")
	r.Join("c", "Carol")

	events := h.rm.Leave(r.Code, "a")
	if len(events) != 2 || events[0].Name != EventPlayerLeft || events[1].Name != EventHostChanged {
		t.Fatalf("expected player_left and host_changed, got %v", names(events))
	}
	if id := events[1].Payload.(HostChangedPayload).NewHostID; id != "b" {
		t.Fatalf("expected b to be promoted, got %s", id)
	}

	events = h.rm.Leave(r.Code, "c")
	if len(events) != 1 {
		t.Fatalf("non-host leaving should not change host, got %v", names(events))
	}

	h.rm.Leave(r.Code, "b")
	if _, err := h.rm.Get(r.Code); !errors.Is(err, ErrRoomNotFound) {
		t.Fatal("room should be destroyed with its last player")
	}
	if _, err := r.Join("d", "Dan"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("closed room must refuse joins, got %v", err)
	}
}

func TestRejoinRestoresHost(t *testing.T) {
	h := newHarness("CRANE")
	r, _ := h.rm.CreateRoom("a", "Alice")
	r.Join("b", "Bob")
	h.rm.Leave(r.Code, "a")

	_, events, err := h.rm.JoinRoom(r.Code, "a", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{EventRoomJoined, EventPlayerJoined, EventHostChanged}
	if got := names(events); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if r.HostID() != "a" {
		t.Fatalf("senior player should be host again, got %s", r.HostID())
	}
}

func TestLeaveActivePlayerAdvancesTurn(t *testing.T) {
	h := newHarness("CRANE")
	r := h.playing(t, "a", "b", "c")

	events := h.rm.Leave(r.Code, "a")
	want := []string{EventPlayerLeft, EventHostChanged, EventTurnChanged, EventYourTurn}
	if got := names(events); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if r.ActivePlayer() != "b" {
		t.Fatalf("expected b active, got %s", r.ActivePlayer())
	}
	if live := h.sched.live(); len(live) != 1 {
		t.Fatalf("expected exactly one armed turn timer, got %d", len(live))
	}
}

func TestLeaveBelowMinimumEndsGame(t *testing.T) {
	h := newHarness("CRANE")
	r := h.playing(t, "a", "b")

	events := h.rm.Leave(r.Code, "b")
	if _, ok := find(events, EventGameOver); !ok {
		t.Fatalf("expected game over, got %v", names(events))
	}
	if len(h.sched.live()) != 0 {
		t.Fatal("all timers should be cancelled")
	}
	if r.Status() != StatusGameOver {
		t.Fatalf("expected game over, got %s", r.Status())
	}
}

func TestDestroyCancelsTimers(t *testing.T) {
	h := newHarness("CRANE")
	r := h.playing(t, "a", "b")
	pending := h.sched.live()[0]

	h.rm.Leave(r.Code, "a") // ends the game
	h.rm.Leave(r.Code, "b") // destroys the room
	if h.rm.Count() != 0 {
		t.Fatalf("expected no rooms, got %d", h.rm.Count())
	}
	pending.f()
	if events := h.disp.take(); len(events) != 0 {
		t.Fatalf("timer of a destroyed room must not emit, got %v", names(events))
	}
}
