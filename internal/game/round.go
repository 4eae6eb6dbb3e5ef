package game

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StartGame moves a lobby into play. The first round starts after the
// configured start delay so clients can switch screens first. Non-hosts and
// rooms that are not in the lobby are ignored.
func (r *Room) StartGame(callerID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if callerID != r.hostID() || r.status != StatusLobby {
		return nil, nil
	}
	if r.connectedCount() < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	for _, p := range r.players {
		p.Score = 0
		p.Surrendered = false
	}
	r.round = 0
	r.status = StatusPlaying
	r.arm(&r.phaseTimer, r.opts.Timing.StartDelay, func() []Event {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.WordTimeout)
		defer cancel()
		return r.startRound(ctx)
	})
	log.Info().Str("code", r.Code).Int("players", r.connectedCount()).Msg("game started")
	return []Event{broadcast(EventGameStarted, GameStartedPayload{
		RoundNumber: 1,
		TotalRounds: r.settings.TotalRounds,
		WordLength:  r.settings.WordLength,
	})}, nil
}

// NextRound is the host's advance after a round summary. It ends the game
// instead when every configured round has been played.
func (r *Room) NextRound(ctx context.Context, callerID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || callerID != r.hostID() || r.status != StatusRoundOver {
		return nil
	}
	if r.round >= r.settings.TotalRounds {
		return r.endGame()
	}
	return r.startRound(ctx)
}

// PlayAgain returns a finished room to the lobby.
func (r *Room) PlayAgain(callerID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || callerID != r.hostID() || r.status != StatusGameOver {
		return nil
	}
	r.stopTimers()
	for _, p := range r.players {
		p.Score = 0
		p.Surrendered = false
	}
	r.round = 0
	r.word = ""
	r.guesses = nil
	r.turnOrder = nil
	r.turnIndex = 0
	r.status = StatusLobby
	return []Event{broadcast(EventBackToLobby, LobbyPayload{
		Players:  r.roster(),
		Settings: r.settings,
		HostID:   r.hostID(),
	})}
}

func (r *Room) startRound(ctx context.Context) []Event {
	r.round++
	word, err := r.opts.Words.Pick(ctx, r.settings.WordLength)
	if err == nil && len(word) != r.settings.WordLength {
		err = ErrWrongLength
	}
	if err != nil {
		log.Error().Err(err).Str("code", r.Code).Int("round", r.round).Msg("no word for round")
		return r.finishGame(ReasonNoWord)
	}

	r.word = strings.ToUpper(word)
	r.guesses = nil
	r.guessCounts = make(map[string]int)
	r.history = make(map[string][]Guess)
	r.timeouts = make(map[string]int)
	r.eliminated = make(map[string]bool)

	order := make([]string, 0, len(r.players))
	for _, p := range r.players {
		p.Surrendered = false
		if p.Connected {
			order = append(order, p.ID)
		}
	}
	r.opts.Shuffle(order)
	r.turnOrder = order
	r.turnIndex = 0
	r.poolLimit = GuessesPerPlayer * len(order)
	r.status = StatusPlaying

	var endsAt *int64
	r.roundTimer.stop()
	r.roundEnds = time.Time{}
	if r.settings.RoundMinutes > 0 {
		d := time.Duration(r.settings.RoundMinutes) * time.Minute
		r.roundEnds = time.Now().Add(d)
		ms := r.roundEnds.UnixMilli()
		endsAt = &ms
		r.arm(&r.roundTimer, d, func() []Event {
			if r.status != StatusPlaying {
				return nil
			}
			log.Info().Str("code", r.Code).Int("round", r.round).Msg("round timer expired")
			return r.endRound("")
		})
	}
	r.arm(&r.turnTimer, r.opts.Timing.TurnDelay, r.scheduleTurn)

	log.Info().Str("code", r.Code).Int("round", r.round).Int("pool", r.poolLimit).Msg("round started")
	return []Event{broadcast(EventNewRound, NewRoundPayload{
		RoundNumber:     r.round,
		TotalRounds:     r.settings.TotalRounds,
		TurnOrder:       slices.Clone(order),
		Players:         r.roster(),
		WordLength:      r.settings.WordLength,
		TotalGuessLimit: r.poolLimit,
		RoundEndTime:    endsAt,
	})}
}

// endRound closes the current round. An empty winnerID means nobody solved it.
func (r *Room) endRound(winnerID string) []Event {
	r.turnTimer.stop()
	r.roundTimer.stop()
	r.status = StatusRoundOver

	var winner *string
	if winnerID != "" {
		winner = &winnerID
	}
	if r.round >= r.settings.TotalRounds {
		r.arm(&r.phaseTimer, r.opts.Timing.GameOverDelay, r.endGame)
	}
	log.Info().Str("code", r.Code).Int("round", r.round).Str("winnerId", winnerID).Msg("round over")
	return []Event{broadcast(EventRoundOver, RoundOverPayload{
		WinnerID:    winner,
		Word:        r.word,
		Scores:      r.scores(),
		RoundNumber: r.round,
		TotalRounds: r.settings.TotalRounds,
	})}
}

func (r *Room) endGame() []Event { return r.finishGame("") }

// finishGame is idempotent: the delayed game-over timer and a host advance may
// both reach it. A non-empty reason marks a game cut short.
func (r *Room) finishGame(reason string) []Event {
	if r.status == StatusGameOver {
		return nil
	}
	r.stopTimers()
	r.status = StatusGameOver

	standings := r.scores()
	slices.SortStableFunc(standings, func(a, b ScoreEntry) int { return b.Score - a.Score })
	res := GameResult{
		GameID:      uuid.NewString(),
		RoomCode:    r.Code,
		FinalScores: standings,
		Rounds:      r.round,
		FinishedAt:  time.Now().UTC(),
		Reason:      reason,
	}
	switch {
	case len(standings) == 0:
	case len(standings) == 1 || standings[0].Score > standings[1].Score:
		id := standings[0].ID
		res.WinnerID = &id
	default:
		res.Draw = true
	}
	log.Info().Str("code", r.Code).Int("rounds", r.round).Bool("draw", res.Draw).Str("reason", reason).Msg("game over")
	return []Event{broadcast(EventGameOver, res)}
}
