package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// WordProvider supplies round words and validates guesses.
type WordProvider interface {
	Pick(ctx context.Context, length int) (string, error)
	IsValid(ctx context.Context, word string) bool
}

type Timing struct {
	StartDelay    time.Duration // game_started -> first round
	TurnDelay     time.Duration // new_round -> first turn
	GameOverDelay time.Duration // last round_over -> game_over
}

type Options struct {
	Words       WordProvider
	Dispatcher  Dispatcher
	Scheduler   Scheduler
	Timing      Timing
	WordTimeout time.Duration
	Defaults    Settings

	// Shuffle permutes a round's turn order in place.
	Shuffle func([]string)
}

func (o *Options) fill() {
	if o.Scheduler == nil {
		o.Scheduler = realScheduler{}
	}
	if o.WordTimeout <= 0 {
		o.WordTimeout = 5 * time.Second
	}
	if o.Defaults == (Settings{}) {
		o.Defaults = DefaultSettings()
	}
	if o.Shuffle == nil {
		o.Shuffle = func(ids []string) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		}
	}
}

// Registry owns every live room of this process, keyed by room code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	opts  *Options
}

func NewRegistry(opts Options) *Registry {
	opts.fill()
	return &Registry{rooms: make(map[string]*Room), opts: &opts}
}

// SetDispatcher wires the transport. Call it before any room is created.
func (rm *Registry) SetDispatcher(d Dispatcher) { rm.opts.Dispatcher = d }

func (rm *Registry) CreateRoom(playerID, name string) (*Room, []Event) {
	rm.mu.Lock()
	code := randomCode(codeLength)
	for rm.rooms[code] != nil {
		code = randomCode(codeLength)
	}
	r := newRoom(code, rm.opts)
	rm.rooms[code] = r
	rm.mu.Unlock()

	events := r.addCreator(playerID, name)
	log.Info().Str("code", code).Str("playerId", playerID).Msg("room created")
	return r, events
}

func (rm *Registry) JoinRoom(code, playerID, name string) (*Room, []Event, error) {
	r, err := rm.Get(code)
	if err != nil {
		return nil, nil, err
	}
	events, err := r.Join(playerID, name)
	if err != nil {
		return nil, nil, err
	}
	return r, events, nil
}

func (rm *Registry) Get(code string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r := rm.rooms[code]
	if r == nil {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// UpdateSettings is a no-op for unknown rooms and non-host callers.
func (rm *Registry) UpdateSettings(code, callerID string, patch SettingsPatch) []Event {
	r, err := rm.Get(code)
	if err != nil {
		return nil
	}
	return r.UpdateSettings(callerID, patch)
}

// Leave disconnects playerID from the room and destroys the room once its
// last connected player is gone.
func (rm *Registry) Leave(code, playerID string) []Event {
	r, err := rm.Get(code)
	if err != nil {
		return nil
	}
	events, empty := r.Remove(playerID)
	if empty {
		rm.mu.Lock()
		if rm.rooms[code] == r {
			delete(rm.rooms, code)
		}
		rm.mu.Unlock()
		log.Info().Str("code", code).Msg("room destroyed")
	}
	return events
}

func (rm *Registry) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func (rm *Registry) Codes() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make([]string, 0, len(rm.rooms))
	for code := range rm.rooms {
		out = append(out, code)
	}
	return out
}

func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
