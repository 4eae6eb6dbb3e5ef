package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room full")
	ErrGameInProgress   = errors.New("game in progress")
	ErrNotEnoughPlayers = errors.New("not enough players")

	ErrNoActiveGame = errors.New("no active game")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrWrongLength  = errors.New("wrong guess length")
	ErrInvalidWord  = errors.New("invalid word")
)
