package game

import (
	"time"
)

type Status string

const (
	StatusLobby     Status = "lobby"
	StatusPlaying   Status = "playing"
	StatusRoundOver Status = "round_over"
	StatusGameOver  Status = "game_over"
)

// Color is the classification of one guessed letter.
type Color string

const (
	ColorCorrect Color = "correct"
	ColorPresent Color = "present"
	ColorAbsent  Color = "absent"
)

const (
	MinPlayers = 2
	MaxPlayers = 8

	MinWordLength = 5
	MaxWordLength = 8

	GuessesPerPlayer = 5
	MaxTimeouts      = 3
)

type Settings struct {
	WordLength   int `json:"wordLength"`
	TotalRounds  int `json:"totalRounds"`
	TimerSeconds int `json:"timerSeconds"`
	RoundMinutes int `json:"roundMinutes"` // 0 disables the round timer
}

func DefaultSettings() Settings {
	return Settings{WordLength: 5, TotalRounds: 5, TimerSeconds: 15}
}

// SettingsPatch carries the fields a host wants to change; nil fields are left alone.
type SettingsPatch struct {
	WordLength   *int `json:"wordLength"`
	TotalRounds  *int `json:"rounds"`
	TimerSeconds *int `json:"timerSeconds"`
	RoundMinutes *int `json:"roundMinutes"`
}

func (s Settings) apply(p SettingsPatch) Settings {
	if v := p.WordLength; v != nil && *v >= MinWordLength && *v <= MaxWordLength {
		s.WordLength = *v
	}
	if v := p.TotalRounds; v != nil && *v >= 1 && *v <= 15 {
		s.TotalRounds = *v
	}
	if v := p.TimerSeconds; v != nil && *v >= 5 && *v <= 120 {
		s.TimerSeconds = *v
	}
	if v := p.RoundMinutes; v != nil && *v >= 0 && *v <= 30 {
		s.RoundMinutes = *v
	}
	return s
}

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Connected   bool   `json:"connected"`
	Surrendered bool   `json:"surrendered"`
}

type Guess struct {
	PlayerID string  `json:"playerId"`
	Word     string  `json:"guess"`
	Colors   []Color `json:"colors"`
}

func (g Guess) Solved() bool { return Solved(g.Colors) }

type ScoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameResult is the game_over payload and the record handed to result recorders.
type GameResult struct {
	GameID      string       `json:"gameId"`
	RoomCode    string       `json:"roomCode"`
	FinalScores []ScoreEntry `json:"finalScores"`
	WinnerID    *string      `json:"winnerId"`
	Draw        bool         `json:"draw"`
	Rounds      int          `json:"rounds"`
	FinishedAt  time.Time    `json:"finishedAt"`
	Reason      string       `json:"reason,omitempty"`
}

// ReasonNoWord ends a game whose next round could not get a word.
const ReasonNoWord = "word_unavailable"

// Winner returns the winning entry, or nil for a draw.
func (r GameResult) Winner() *ScoreEntry {
	if r.WinnerID == nil {
		return nil
	}
	for i := range r.FinalScores {
		if r.FinalScores[i].ID == *r.WinnerID {
			return &r.FinalScores[i]
		}
	}
	return nil
}

// Summary is the public view of a room used by the HTTP API.
type Summary struct {
	Code        string    `json:"code"`
	Status      Status    `json:"status"`
	PlayerCount int       `json:"playerCount"`
	Connected   int       `json:"connected"`
	Round       int       `json:"round"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"createdAt"`
}
