package room

import "errors"

// Rejections returned by GameRoom and Registry. None of them leaves a partial mutation behind.
var (
	ErrRoomFull         = errors.New("room is full")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrMustShootFirst   = errors.New("you must shoot before continuing")
	ErrNoBulletsLoaded  = errors.New("you don't have 3 bullets loaded right now")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrNotStarted       = errors.New("game has not started")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("at least 2 players are required to start")
	ErrGameOver         = errors.New("game is over")
	ErrAlreadyJoined    = errors.New("player already in room")
	ErrPlayerNotFound   = errors.New("player not in room")
	ErrInvalidCapacity  = errors.New("invalid room capacity")
	ErrInvalidRoomKey   = errors.New("room key must not be empty")
)
