package server

import (
	"github.com/wfunc/oddroll/room"
)

// Inbound payloads.

type JoinRoomRequest struct {
	RoomKey    string `json:"roomKey"`
	PlayerName string `json:"playerName"`
	Capacity   int    `json:"capacity"`
}

type ShootRequest struct {
	TargetID      string `json:"targetId"`
	DisableNumber int    `json:"disableNumber"`
}

// Outbound payloads.

type JoinSuccess struct {
	RoomKey  string               `json:"roomKey"`
	PlayerID string               `json:"playerId"`
	Players  []room.PlayerSummary `json:"players"`
}

// Notice carries joinFailed, notYourTurn and actionRejected.
type Notice struct {
	Message string `json:"message"`
}

// Roster is the body of playerJoined, playerLeft, gameStarted and turnChanged.
type Roster struct {
	Players       []room.PlayerSummary `json:"players"`
	CurrentPlayer *room.PlayerSummary  `json:"currentPlayer"`
}

type GameOver struct {
	Winner *room.PlayerSummary `json:"winner"`
}

func rosterOf(r *room.GameRoom) Roster {
	gs := r.Snapshot("")
	return Roster{Players: gs.Players, CurrentPlayer: gs.CurrentPlayer}
}
