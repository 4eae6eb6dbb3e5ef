package game

const (
	EventRoomCreated       = "room_created"
	EventRoomJoined        = "room_joined"
	EventPlayerJoined      = "player_joined"
	EventPlayerLeft        = "player_left"
	EventSettingsUpdated   = "settings_updated"
	EventGameStarted       = "game_started"
	EventNewRound          = "new_round"
	EventTurnChanged       = "turn_changed"
	EventYourTurn          = "your_turn"
	EventGuessResult       = "guess_result"
	EventTurnTimeout       = "turn_timeout"
	EventPlayerEliminated  = "player_eliminated"
	EventPlayerSurrendered = "player_surrendered"
	EventRoundOver         = "round_over"
	EventGameOver          = "game_over"
	EventHostChanged       = "host_changed"
	EventBackToLobby       = "back_to_lobby"
	EventError             = "error"
)

// Event is one outbound message produced by a room transition. An empty To
// broadcasts to the room; Except excludes a single member from a broadcast.
type Event struct {
	Name    string
	To      string
	Except  string
	Payload any
}

// Dispatcher delivers events to connected clients. Room operations return
// their events to the caller; timer firings hand theirs to the Dispatcher.
type Dispatcher interface {
	Dispatch(code string, events []Event)
}

type DispatcherFunc func(code string, events []Event)

func (f DispatcherFunc) Dispatch(code string, events []Event) { f(code, events) }

func broadcast(name string, payload any) Event {
	return Event{Name: name, Payload: payload}
}

func toPlayer(id, name string, payload any) Event {
	return Event{Name: name, To: id, Payload: payload}
}

type RoomSnapshot struct {
	RoomCode string    `json:"roomCode"`
	PlayerID string    `json:"playerId"`
	HostID   string    `json:"hostId"`
	Players  []*Player `json:"players"`
	Settings Settings  `json:"settings"`
}

type PlayerJoinedPayload struct {
	Player *Player `json:"player"`
}

type PlayerPayload struct {
	PlayerID string `json:"playerId"`
}

type SettingsPayload struct {
	Settings Settings `json:"settings"`
}

type GameStartedPayload struct {
	RoundNumber int `json:"roundNumber"`
	TotalRounds int `json:"totalRounds"`
	WordLength  int `json:"wordLength"`
}

type NewRoundPayload struct {
	RoundNumber     int       `json:"roundNumber"`
	TotalRounds     int       `json:"totalRounds"`
	TurnOrder       []string  `json:"turnOrder"`
	Players         []*Player `json:"players"`
	WordLength      int       `json:"wordLength"`
	TotalGuessLimit int       `json:"totalGuessLimit"`
	RoundEndTime    *int64    `json:"roundEndTime"` // unix ms
}

type TurnChangedPayload struct {
	ActivePlayerID string `json:"activePlayerId"`
}

type YourTurnPayload struct {
	TimeLimit int `json:"timeLimit"`
}

type GuessResultPayload struct {
	PlayerID  string  `json:"playerId"`
	Guess     string  `json:"guess"`
	Colors    []Color `json:"colors"`
	IsCorrect bool    `json:"isCorrect"`
}

type RoundOverPayload struct {
	WinnerID    *string      `json:"winnerId"`
	Word        string       `json:"word"`
	Scores      []ScoreEntry `json:"scores"`
	RoundNumber int          `json:"roundNumber"`
	TotalRounds int          `json:"totalRounds"`
}

type HostChangedPayload struct {
	NewHostID string `json:"newHostId"`
}

type LobbyPayload struct {
	Players  []*Player `json:"players"`
	Settings Settings  `json:"settings"`
	HostID   string    `json:"hostId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
