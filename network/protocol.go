package network

// Inbound message ids (client -> server).
const (
	MsgTypeHeartbeat    = 1
	MsgTypeJoinRoom     = 101
	MsgTypeLeaveRoom    = 102
	MsgTypeStartGame    = 201
	MsgTypeRollDice     = 202
	MsgTypeShootPlayer  = 203
	MsgTypeNextTurn     = 204
	MsgTypeGetGameState = 205
)

// Outbound message ids (server -> client).
const (
	MsgTypeJoinSuccess    = 111
	MsgTypeJoinFailed     = 112
	MsgTypePlayerJoined   = 113
	MsgTypePlayerLeft     = 114
	MsgTypeGameStarted    = 301
	MsgTypeDiceRolled     = 302
	MsgTypePlayerShot     = 303
	MsgTypeTurnChanged    = 304
	MsgTypeGameOver       = 305
	MsgTypeGameState      = 306
	MsgTypeNotYourTurn    = 401
	MsgTypeActionRejected = 402
)

var msgNames = map[uint16]string{
	MsgTypeHeartbeat:      "heartbeat",
	MsgTypeJoinRoom:       "joinRoom",
	MsgTypeLeaveRoom:      "leaveRoom",
	MsgTypeStartGame:      "startGame",
	MsgTypeRollDice:       "rollDice",
	MsgTypeShootPlayer:    "shootPlayer",
	MsgTypeNextTurn:       "nextTurn",
	MsgTypeGetGameState:   "getGameState",
	MsgTypeJoinSuccess:    "joinSuccess",
	MsgTypeJoinFailed:     "joinFailed",
	MsgTypePlayerJoined:   "playerJoined",
	MsgTypePlayerLeft:     "playerLeft",
	MsgTypeGameStarted:    "gameStarted",
	MsgTypeDiceRolled:     "diceRolled",
	MsgTypePlayerShot:     "playerShot",
	MsgTypeTurnChanged:    "turnChanged",
	MsgTypeGameOver:       "gameOver",
	MsgTypeGameState:      "gameState",
	MsgTypeNotYourTurn:    "notYourTurn",
	MsgTypeActionRejected: "actionRejected",
}

// MsgName returns the event name of a message id, used for logs and metrics labels.
func MsgName(msgID uint16) string {
	if name, ok := msgNames[msgID]; ok {
		return name
	}
	return "unknown"
}
