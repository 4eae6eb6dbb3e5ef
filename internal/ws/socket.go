package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/kiliankoe/wordturn/internal/config"
	"github.com/kiliankoe/wordturn/internal/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxNameLen = 20

// ConnCtx is stored on every socket. The socket id doubles as the player id.
type ConnCtx struct {
	Code string
}

// Broadcaster is the slice of *socketio.Server the dispatcher needs.
type Broadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

type Server struct {
	RM     *game.Registry
	config config.Config

	bc        Broadcaster
	mu        sync.RWMutex
	members   map[string]map[string]socketio.Conn // roomCode -> socketID -> Conn
	limiters  map[string]*rate.Limiter
	recorders []game.ResultRecorder
}

func New(rm *game.Registry, cfg config.Config) *Server {
	return &Server{
		RM:       rm,
		config:   cfg,
		members:  make(map[string]map[string]socketio.Conn),
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddRecorder registers a sink for finished games.
func (srv *Server) AddRecorder(rec game.ResultRecorder) { srv.recorders = append(srv.recorders, rec) }

type createReq struct {
	PlayerName string `json:"playerName"`
}

type joinReq struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type roomReq struct {
	RoomCode string `json:"roomCode"`
}

type settingsReq struct {
	RoomCode string `json:"roomCode"`
	game.SettingsPatch
}

type guessReq struct {
	RoomCode string `json:"roomCode"`
	Guess    string `json:"guess"`
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.bc = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "create_room", srv.createRoom)
	io.OnEvent("/", "join_room", srv.joinRoom)
	io.OnEvent("/", "update_settings", srv.updateSettings)
	io.OnEvent("/", "start_game", srv.startGame)
	io.OnEvent("/", "submit_guess", srv.submitGuess)
	io.OnEvent("/", "surrender", srv.surrender)
	io.OnEvent("/", "next_round", srv.nextRound)
	io.OnEvent("/", "play_again", srv.playAgain)
	io.OnEvent("/", "leave_room", srv.leaveRoom)

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.leave(s)
		srv.mu.Lock()
		delete(srv.limiters, s.ID())
		srv.mu.Unlock()
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) createRoom(s socketio.Conn, p createReq) map[string]any {
	if !srv.allow(s) {
		return srv.rateLimited(s)
	}
	srv.leave(s)
	room, events := srv.RM.CreateRoom(s.ID(), cleanName(p.PlayerName))
	srv.enter(s, room.Code)
	srv.Dispatch(room.Code, events)
	return map[string]any{"roomCode": room.Code}
}

// joinRoom enters the new room first and only then leaves the current one,
// so a rejected join leaves the player where they were.
func (srv *Server) joinRoom(s socketio.Conn, p joinReq) map[string]any {
	if !srv.allow(s) {
		return srv.rateLimited(s)
	}
	code := normCode(p.RoomCode)
	prev := connCtx(s).Code
	if prev != "" && prev == code {
		return map[string]any{"roomCode": code}
	}
	room, err := srv.RM.Get(code)
	if err != nil {
		return srv.fail(s, err)
	}
	room.Sequence(func() {
		var events []game.Event
		if events, err = room.Join(s.ID(), cleanName(p.PlayerName)); err != nil {
			return
		}
		srv.enter(s, code)
		srv.Dispatch(code, events)
	})
	if err != nil {
		return srv.fail(s, err)
	}
	if prev != "" {
		srv.part(s, prev)
	}
	log.Info().Str("sid", s.ID()).Str("code", code).Msg("join_room")
	return map[string]any{"roomCode": code}
}

// updateSettings ignores unknown rooms and non-hosts without an error.
func (srv *Server) updateSettings(s socketio.Conn, p settingsReq) map[string]any {
	if !srv.allow(s) {
		return srv.rateLimited(s)
	}
	code := srv.codeFor(s, p.RoomCode)
	if room, err := srv.RM.Get(code); err == nil {
		room.Sequence(func() {
			srv.Dispatch(code, room.UpdateSettings(s.ID(), p.SettingsPatch))
		})
	}
	return map[string]any{"ok": true}
}

func (srv *Server) startGame(s socketio.Conn, p roomReq) map[string]any {
	return srv.withRoom(s, p.RoomCode, func(room *game.Room) ([]game.Event, error) {
		return room.StartGame(s.ID())
	})
}

func (srv *Server) submitGuess(s socketio.Conn, p guessReq) map[string]any {
	return srv.withRoom(s, p.RoomCode, func(room *game.Room) ([]game.Event, error) {
		ctx, cancel := srv.wordContext()
		defer cancel()
		return room.SubmitGuess(ctx, s.ID(), p.Guess)
	})
}

func (srv *Server) surrender(s socketio.Conn, p roomReq) map[string]any {
	return srv.withRoom(s, p.RoomCode, func(room *game.Room) ([]game.Event, error) {
		return room.Surrender(s.ID()), nil
	})
}

func (srv *Server) nextRound(s socketio.Conn, p roomReq) map[string]any {
	return srv.withRoom(s, p.RoomCode, func(room *game.Room) ([]game.Event, error) {
		ctx, cancel := srv.wordContext()
		defer cancel()
		return room.NextRound(ctx, s.ID()), nil
	})
}

func (srv *Server) playAgain(s socketio.Conn, p roomReq) map[string]any {
	return srv.withRoom(s, p.RoomCode, func(room *game.Room) ([]game.Event, error) {
		return room.PlayAgain(s.ID()), nil
	})
}

func (srv *Server) leaveRoom(s socketio.Conn, _ roomReq) map[string]any {
	srv.leave(s)
	return map[string]any{"ok": true}
}

// withRoom runs a room action for the calling socket and dispatches its events.
func (srv *Server) withRoom(s socketio.Conn, rawCode string, fn func(*game.Room) ([]game.Event, error)) map[string]any {
	if !srv.allow(s) {
		return srv.rateLimited(s)
	}
	code := srv.codeFor(s, rawCode)
	room, err := srv.RM.Get(code)
	if err != nil {
		return srv.fail(s, err)
	}
	room.Sequence(func() {
		var events []game.Event
		if events, err = fn(room); err == nil {
			srv.Dispatch(code, events)
		}
	})
	if err != nil {
		return srv.fail(s, err)
	}
	return map[string]any{"ok": true}
}

func (srv *Server) wordContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), srv.config.WordTimeout)
}

// enter records s as a member of code.
func (srv *Server) enter(s socketio.Conn, code string) {
	s.SetContext(&ConnCtx{Code: code})
	s.Join(code)
	srv.mu.Lock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][s.ID()] = s
	srv.mu.Unlock()
}

// leave removes s from its current room, if any, and dispatches the fallout.
func (srv *Server) leave(s socketio.Conn) {
	code := connCtx(s).Code
	if code == "" {
		return
	}
	s.SetContext(&ConnCtx{})
	srv.part(s, code)
}

// part takes s out of code without touching its current-room context.
func (srv *Server) part(s socketio.Conn, code string) {
	s.Leave(code)
	srv.mu.Lock()
	if m := srv.members[code]; m != nil {
		delete(m, s.ID())
		if len(m) == 0 {
			delete(srv.members, code)
		}
	}
	srv.mu.Unlock()
	if room, err := srv.RM.Get(code); err == nil {
		room.Sequence(func() {
			srv.Dispatch(code, srv.RM.Leave(code, s.ID()))
		})
	}
	log.Info().Str("sid", s.ID()).Str("code", code).Msg("left room")
}

// Dispatch implements game.Dispatcher.
func (srv *Server) Dispatch(code string, events []game.Event) {
	for _, ev := range events {
		switch {
		case ev.To != "":
			srv.mu.RLock()
			c := srv.members[code][ev.To]
			srv.mu.RUnlock()
			if c != nil {
				c.Emit(ev.Name, ev.Payload)
			}
		case ev.Except != "":
			for _, c := range srv.conns(code) {
				if c.ID() != ev.Except {
					c.Emit(ev.Name, ev.Payload)
				}
			}
		case srv.bc != nil:
			srv.bc.BroadcastToRoom("/", code, ev.Name, ev.Payload)
		default:
			for _, c := range srv.conns(code) {
				c.Emit(ev.Name, ev.Payload)
			}
		}
		if res, ok := ev.Payload.(game.GameResult); ok && ev.Name == game.EventGameOver {
			go srv.record(res)
		}
	}
}

func (srv *Server) record(res game.GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, rec := range srv.recorders {
		if err := rec.RecordGame(ctx, res); err != nil {
			log.Error().Err(err).Str("code", res.RoomCode).Msg("failed to record game")
		}
	}
	log.Info().Str("code", res.RoomCode).Str("gameId", res.GameID).Int("recorders", len(srv.recorders)).Msg("game recorded")
}

func (srv *Server) conns(code string) []socketio.Conn {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	out := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		out = append(out, c)
	}
	return out
}

// Connections counts sockets currently inside a room.
func (srv *Server) Connections() int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	n := 0
	for _, m := range srv.members {
		n += len(m)
	}
	return n
}

func (srv *Server) allow(s socketio.Conn) bool {
	srv.mu.Lock()
	l := srv.limiters[s.ID()]
	if l == nil {
		l = rate.NewLimiter(rate.Limit(srv.config.RateLimit), srv.config.RateBurst)
		srv.limiters[s.ID()] = l
	}
	srv.mu.Unlock()
	return l.Allow()
}

func (srv *Server) codeFor(s socketio.Conn, raw string) string {
	if code := normCode(raw); code != "" {
		return code
	}
	return connCtx(s).Code
}

func (srv *Server) rateLimited(s socketio.Conn) map[string]any {
	return srv.err(s, "rate_limited", "Slow down")
}

func (srv *Server) fail(s socketio.Conn, err error) map[string]any {
	code, msg := userMessage(err)
	return srv.err(s, code, msg)
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit(game.EventError, game.ErrorPayload{Code: code, Message: message})
	return map[string]any{"error": message}
}

func userMessage(err error) (code, message string) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "room_not_found", "Room not found"
	case errors.Is(err, game.ErrRoomFull):
		return "room_full", "Room is full"
	case errors.Is(err, game.ErrGameInProgress):
		return "game_in_progress", "Game already in progress"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players", "Need at least 2 players"
	case errors.Is(err, game.ErrNoActiveGame):
		return "no_active_game", "No round in progress"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn", "Not your turn"
	case errors.Is(err, game.ErrWrongLength):
		return "wrong_length", "Wrong word length"
	case errors.Is(err, game.ErrInvalidWord):
		return "invalid_word", "Not a valid word"
	default:
		return "bad_request", err.Error()
	}
}

func connCtx(s socketio.Conn) *ConnCtx {
	if ctx, ok := s.Context().(*ConnCtx); ok && ctx != nil {
		return ctx
	}
	return &ConnCtx{}
}

func normCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxNameLen]))
	}
	return name
}
