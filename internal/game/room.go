package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Room is one game instance. Every exported method takes mu for its whole
// duration, including word fetches and validation, so no two operations on
// the same room interleave.
type Room struct {
	Code      string
	CreatedAt time.Time

	mu     sync.Mutex
	emitMu sync.Mutex // taken before mu; held from commit until dispatch
	opts   *Options
	closed bool

	players  []*Player // join order; also host seniority
	settings Settings
	status   Status

	round     int
	word      string
	poolLimit int
	roundEnds time.Time

	// turn scheduling; the active player is always derived from these
	turnOrder  []string
	turnIndex  int
	eliminated map[string]bool
	timeouts   map[string]int

	guesses     []Guess
	guessCounts map[string]int
	history     map[string][]Guess

	turnTimer  timerSlot // first-turn delay, then per-turn timeout
	roundTimer timerSlot // round master timer
	phaseTimer timerSlot // game start and game over delays
}

func newRoom(code string, opts *Options) *Room {
	return &Room{
		Code:        code,
		CreatedAt:   time.Now().UTC(),
		opts:        opts,
		settings:    opts.Defaults,
		status:      StatusLobby,
		eliminated:  make(map[string]bool),
		timeouts:    make(map[string]int),
		guessCounts: make(map[string]int),
		history:     make(map[string][]Guess),
	}
}

func (r *Room) addCreator(playerID, name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = append(r.players, &Player{ID: playerID, Name: name, Connected: true})
	return []Event{toPlayer(playerID, EventRoomCreated, r.snapshot(playerID))}
}

// Join adds a player to a lobby. Joining again with an id already in the room
// only repeats the snapshot to that player.
func (r *Room) Join(playerID, name string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if p := r.player(playerID); p != nil {
		if p.Connected {
			return []Event{toPlayer(playerID, EventRoomJoined, r.snapshot(playerID))}, nil
		}
		return r.reconnect(p), nil
	}
	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.status != StatusLobby {
		return nil, ErrGameInProgress
	}
	p := &Player{ID: playerID, Name: name, Connected: true}
	r.players = append(r.players, p)
	log.Info().Str("code", r.Code).Str("playerId", playerID).Int("players", len(r.players)).Msg("player joined")
	return []Event{
		toPlayer(playerID, EventRoomJoined, r.snapshot(playerID)),
		{Name: EventPlayerJoined, Except: playerID, Payload: PlayerJoinedPayload{Player: copyPlayer(p)}},
	}, nil
}

// reconnect marks a returning player connected again. Seniority is kept, so
// the host may move back to them.
func (r *Room) reconnect(p *Player) []Event {
	prevHost := r.hostID()
	p.Connected = true
	events := []Event{
		toPlayer(p.ID, EventRoomJoined, r.snapshot(p.ID)),
		{Name: EventPlayerJoined, Except: p.ID, Payload: PlayerJoinedPayload{Player: copyPlayer(p)}},
	}
	if host := r.hostID(); host != prevHost {
		events = append(events, broadcast(EventHostChanged, HostChangedPayload{NewHostID: host}))
	}
	log.Info().Str("code", r.Code).Str("playerId", p.ID).Msg("player reconnected")
	return events
}

func (r *Room) UpdateSettings(callerID string, patch SettingsPatch) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusLobby || callerID != r.hostID() {
		return nil
	}
	r.settings = r.settings.apply(patch)
	return []Event{broadcast(EventSettingsUpdated, SettingsPayload{Settings: r.settings})}
}

// Remove marks playerID disconnected. empty reports that no connected player
// is left; the room is closed and all its timers are cancelled in that case.
func (r *Room) Remove(playerID string) (events []Event, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.player(playerID)
	if r.closed || p == nil || !p.Connected {
		return nil, r.closed
	}
	prevHost := r.hostID()
	wasActive := r.status == StatusPlaying && r.activePlayer() == playerID

	p.Connected = false
	events = append(events, broadcast(EventPlayerLeft, PlayerPayload{PlayerID: playerID}))
	if host := r.hostID(); host != prevHost && host != "" {
		events = append(events, broadcast(EventHostChanged, HostChangedPayload{NewHostID: host}))
		log.Info().Str("code", r.Code).Str("hostId", host).Msg("host changed")
	}

	connected := r.connectedCount()
	if connected == 0 {
		r.stopTimers()
		r.closed = true
		return events, true
	}
	if (r.status == StatusPlaying || r.status == StatusRoundOver) && connected < MinPlayers {
		r.stopTimers()
		return append(events, r.endGame()...), false
	}
	if wasActive {
		r.turnTimer.stop()
		r.advance()
		events = append(events, r.scheduleTurn()...)
	}
	return events, false
}

// Sequence runs fn holding the room's emit lock. Timer callbacks take the
// same lock around their transition and dispatch, so a caller that applies an
// operation and dispatches its events inside fn emits in commit order.
// fn must not call Sequence on another room.
func (r *Room) Sequence(fn func()) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	fn()
}

func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		Code:        r.Code,
		Status:      r.status,
		PlayerCount: len(r.players),
		Connected:   r.connectedCount(),
		Round:       r.round,
		Settings:    r.settings,
		CreatedAt:   r.CreatedAt,
	}
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID()
}

// ActivePlayer returns the player whose turn it is, or "" when nobody can act.
func (r *Room) ActivePlayer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPlaying {
		return ""
	}
	return r.activePlayer()
}

// hostID is the first connected player in join order.
func (r *Room) hostID() string {
	for _, p := range r.players {
		if p.Connected {
			return p.ID
		}
	}
	return ""
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// roster copies the players so payloads can be encoded after the lock is released.
func (r *Room) roster() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, copyPlayer(p))
	}
	return out
}

func (r *Room) scores() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return out
}

func (r *Room) snapshot(playerID string) RoomSnapshot {
	return RoomSnapshot{
		RoomCode: r.Code,
		PlayerID: playerID,
		HostID:   r.hostID(),
		Players:  r.roster(),
		Settings: r.settings,
	}
}

func copyPlayer(p *Player) *Player {
	c := *p
	return &c
}
