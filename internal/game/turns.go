package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SubmitGuess applies a guess from the active player. Validation may call the
// word provider; the room stays locked until the result is applied.
func (r *Room) SubmitGuess(ctx context.Context, playerID, raw string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if r.status != StatusPlaying || len(r.turnOrder) == 0 {
		return nil, ErrNoActiveGame
	}
	if r.activePlayer() != playerID {
		return nil, ErrNotYourTurn
	}
	guess := strings.ToUpper(strings.TrimSpace(raw))
	if len(guess) != r.settings.WordLength {
		return nil, fmt.Errorf("%w: guess must be %d letters", ErrWrongLength, r.settings.WordLength)
	}
	if !isLetters(guess) || !r.opts.Words.IsValid(ctx, guess) {
		return nil, ErrInvalidWord
	}

	r.turnTimer.stop()
	r.timeouts[playerID] = 0

	g := Guess{PlayerID: playerID, Word: guess, Colors: Colorize(guess, r.word)}
	first := firstSolve(r.guesses)
	r.guesses = append(r.guesses, g)
	r.history[playerID] = append(r.history[playerID], g)
	r.guessCounts[playerID]++

	solved := g.Solved()
	events := []Event{broadcast(EventGuessResult, GuessResultPayload{
		PlayerID:  playerID,
		Guess:     guess,
		Colors:    g.Colors,
		IsCorrect: solved,
	})}
	if solved {
		pts := AwardPoints(r.guessCounts[playerID], first)
		if p := r.player(playerID); p != nil {
			p.Score += pts
		}
		log.Info().Str("code", r.Code).Str("playerId", playerID).Int("points", pts).Msg("word solved")
		return append(events, r.endRound(playerID)...), nil
	}

	r.advance()
	if len(r.guesses) >= r.poolLimit || len(r.eligible()) == 0 {
		return append(events, r.endRound("")...), nil
	}
	return append(events, r.scheduleTurn()...), nil
}

// Surrender takes playerID out of the rest of the round.
func (r *Room) Surrender(playerID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.player(playerID)
	if r.closed || r.status != StatusPlaying || len(r.turnOrder) == 0 || p == nil || p.Surrendered {
		return nil
	}
	wasActive := r.activePlayer() == playerID
	p.Surrendered = true
	events := []Event{broadcast(EventPlayerSurrendered, PlayerPayload{PlayerID: playerID})}
	if wasActive {
		r.turnTimer.stop()
		r.advance()
	}
	if len(r.eligible()) == 0 {
		return append(events, r.endRound("")...)
	}
	if wasActive {
		events = append(events, r.scheduleTurn()...)
	}
	return events
}

// scheduleTurn hands the turn to the next eligible player at or after the
// current index and arms their timeout. With nobody eligible the round ends.
func (r *Room) scheduleTurn() []Event {
	r.turnTimer.stop()
	id, slot := r.activeSlot()
	if id == "" {
		return r.endRound("")
	}
	r.turnIndex = slot
	limit := r.settings.TimerSeconds
	r.arm(&r.turnTimer, time.Duration(limit)*time.Second, func() []Event {
		return r.handleTimeout(id)
	})
	return []Event{
		broadcast(EventTurnChanged, TurnChangedPayload{ActivePlayerID: id}),
		toPlayer(id, EventYourTurn, YourTurnPayload{TimeLimit: limit}),
	}
}

func (r *Room) handleTimeout(playerID string) []Event {
	if r.status != StatusPlaying || r.activePlayer() != playerID {
		return nil
	}
	r.timeouts[playerID]++
	events := []Event{broadcast(EventTurnTimeout, PlayerPayload{PlayerID: playerID})}
	if r.timeouts[playerID] >= MaxTimeouts {
		r.eliminated[playerID] = true
		events = append(events, broadcast(EventPlayerEliminated, PlayerPayload{PlayerID: playerID}))
		log.Info().Str("code", r.Code).Str("playerId", playerID).Msg("player eliminated for round")
	}
	r.advance()
	if len(r.eligible()) == 0 {
		return append(events, r.endRound("")...)
	}
	return append(events, r.scheduleTurn()...)
}

func (r *Room) advance() {
	if n := len(r.turnOrder); n > 0 {
		r.turnIndex = (r.turnIndex + 1) % n
	}
}

// activeSlot scans the turn order from the current index and returns the
// first eligible player with its slot, or "" and -1.
func (r *Room) activeSlot() (string, int) {
	n := len(r.turnOrder)
	for i := 0; i < n; i++ {
		slot := (r.turnIndex + i) % n
		if id := r.turnOrder[slot]; r.isEligible(id) {
			return id, slot
		}
	}
	return "", -1
}

func (r *Room) activePlayer() string {
	id, _ := r.activeSlot()
	return id
}

func (r *Room) isEligible(id string) bool {
	p := r.player(id)
	return p != nil && p.Connected && !p.Surrendered && !r.eliminated[id]
}

func (r *Room) eligible() []string {
	var out []string
	for _, id := range r.turnOrder {
		if r.isEligible(id) {
			out = append(out, id)
		}
	}
	return out
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}
