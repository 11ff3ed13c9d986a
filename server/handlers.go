package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/network"
	"github.com/wfunc/oddroll/room"
	"github.com/wfunc/oddroll/session"
)

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch in the read loop is all a heartbeat does.
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.leaveRoom(sess)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess)
	case network.MsgTypeRollDice:
		s.handleRollDice(sess)
	case network.MsgTypeShootPlayer:
		s.handleShootPlayer(sess, packet)
	case network.MsgTypeNextTurn:
		s.handleNextTurn(sess)
	case network.MsgTypeGetGameState:
		s.handleGetGameState(sess)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	if key := sess.RoomKey(); key != "" {
		s.joinFailed(sess, fmt.Sprintf("Already in room %s", key))
		return
	}

	req, err := network.DecodePayload[JoinRoomRequest](packet)
	if err != nil {
		logger.Log.Infof("Session %s sent a bad join request: %v", sess.GetID(), err)
		s.joinFailed(sess, "Invalid join request")
		return
	}
	key := strings.TrimSpace(req.RoomKey)
	name := strings.TrimSpace(req.PlayerName)
	if key == "" || name == "" {
		s.joinFailed(sess, "Room key and player name are required")
		return
	}

	// Capacity only matters when this join creates the room.
	capacity := req.Capacity
	if capacity == 0 {
		capacity = s.cfg.Game.DefaultCapacity
	}

	r, err := s.registry.Join(key, capacity, sess.GetID(), name)
	if err != nil {
		logger.Log.Infof("Session %s could not join room %s: %v", sess.GetID(), key, err)
		switch {
		case errors.Is(err, room.ErrRoomFull):
			s.joinFailed(sess, "Room is full!")
		case errors.Is(err, room.ErrInvalidCapacity):
			s.joinFailed(sess, fmt.Sprintf("Capacity must be between %d and %d", room.MinPlayers, s.cfg.Game.MaxCapacity))
		default:
			s.joinFailed(sess, err.Error())
		}
		return
	}
	sess.JoinRoom(key, name)
	s.monitor.SetActiveRooms(s.registry.Count())

	logger.Log.Infof("Session %s joined room %s as %s", sess.GetID(), key, name)

	roster := rosterOf(r)
	s.broadcast(key, network.MsgTypePlayerJoined, roster)
	s.send(sess, network.MsgTypeJoinSuccess, JoinSuccess{
		RoomKey:  key,
		PlayerID: sess.GetID(),
		Players:  roster.Players,
	})
}

// leaveRoom removes the session's player. It backs both leaveRoom messages and disconnects.
func (s *GameServer) leaveRoom(sess *session.Session) {
	key := sess.LeaveRoom()
	if key == "" {
		return
	}

	r, removed := s.registry.Leave(key, sess.GetID())
	s.monitor.SetActiveRooms(s.registry.Count())
	if r == nil {
		return
	}
	if removed {
		logger.Log.Infof("Room %s is empty and was removed", key)
		return
	}
	s.broadcast(key, network.MsgTypePlayerLeft, rosterOf(r))
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	r, ok := s.sessionRoom(sess, network.MsgTypeStartGame)
	if !ok {
		return
	}
	if err := r.Start(); err != nil {
		logger.Log.Infof("Session %s could not start room %s: %v", sess.GetID(), r.Key, err)
		s.reject(sess, network.MsgTypeActionRejected, network.MsgTypeStartGame, err.Error())
		return
	}
	s.broadcast(r.Key, network.MsgTypeGameStarted, rosterOf(r))
}

func (s *GameServer) handleRollDice(sess *session.Session) {
	r, ok := s.sessionRoom(sess, network.MsgTypeRollDice)
	if !ok {
		return
	}
	out, err := r.Roll(sess.GetID())
	if err != nil {
		s.rejectAction(sess, network.MsgTypeRollDice, err)
		return
	}
	s.monitor.IncDiceRolled()
	s.broadcast(r.Key, network.MsgTypeDiceRolled, out)
}

func (s *GameServer) handleShootPlayer(sess *session.Session, packet *network.Packet) {
	r, ok := s.sessionRoom(sess, network.MsgTypeShootPlayer)
	if !ok {
		return
	}
	req, err := network.DecodePayload[ShootRequest](packet)
	if err != nil {
		logger.Log.Infof("Session %s sent a bad shoot request: %v", sess.GetID(), err)
		s.reject(sess, network.MsgTypeActionRejected, network.MsgTypeShootPlayer, "Invalid shoot request")
		return
	}

	out, err := r.Shoot(sess.GetID(), req.TargetID, req.DisableNumber)
	if err != nil {
		s.rejectAction(sess, network.MsgTypeShootPlayer, err)
		return
	}
	s.monitor.IncShotsFired()
	s.broadcast(r.Key, network.MsgTypePlayerShot, out)

	if out.Winner != nil {
		logger.Log.Infof("Room %s won by %s", r.Key, out.Winner.Name)
		s.broadcast(r.Key, network.MsgTypeGameOver, GameOver{Winner: out.Winner})
	}
	if out.Match != nil {
		s.recordMatch(*out.Match)
	}
}

func (s *GameServer) handleNextTurn(sess *session.Session) {
	r, ok := s.sessionRoom(sess, network.MsgTypeNextTurn)
	if !ok {
		return
	}
	out, err := r.AdvanceTurn(sess.GetID())
	if err != nil {
		s.rejectAction(sess, network.MsgTypeNextTurn, err)
		return
	}

	if out.GameOver {
		s.broadcast(r.Key, network.MsgTypeGameOver, GameOver{Winner: out.Winner})
		if out.Match != nil {
			s.recordMatch(*out.Match)
		}
		return
	}
	s.broadcast(r.Key, network.MsgTypeTurnChanged, Roster{Players: out.Players, CurrentPlayer: out.Next})
}

func (s *GameServer) handleGetGameState(sess *session.Session) {
	r, ok := s.sessionRoom(sess, network.MsgTypeGetGameState)
	if !ok {
		return
	}
	s.send(sess, network.MsgTypeGameState, r.Snapshot(sess.GetID()))
}

// sessionRoom resolves the room of sess, rejecting the action when there is none.
func (s *GameServer) sessionRoom(sess *session.Session, action uint16) (*room.GameRoom, bool) {
	key := sess.RoomKey()
	if key == "" {
		s.reject(sess, network.MsgTypeActionRejected, action, "You are not in a room")
		return nil, false
	}
	r, exists := s.registry.Get(key)
	if !exists {
		logger.Log.Errorf("Room %s not found for session %s", key, sess.GetID())
		s.reject(sess, network.MsgTypeActionRejected, action, "Room not found")
		return nil, false
	}
	return r, true
}

// rejectAction answers a failed game action. Actions before the start are dropped silently.
func (s *GameServer) rejectAction(sess *session.Session, action uint16, err error) {
	if errors.Is(err, room.ErrNotStarted) {
		logger.Log.Debugf("Session %s sent %s before the game started", sess.GetID(), network.MsgName(action))
		return
	}
	logger.Log.Infof("Session %s %s rejected: %v", sess.GetID(), network.MsgName(action), err)
	s.reject(sess, network.MsgTypeNotYourTurn, action, rejectionMessage(action, err))
}

func (s *GameServer) reject(sess *session.Session, msgID, action uint16, message string) {
	s.monitor.IncActionsRejected(network.MsgName(action))
	s.send(sess, msgID, Notice{Message: message})
}

func (s *GameServer) joinFailed(sess *session.Session, message string) {
	s.reject(sess, network.MsgTypeJoinFailed, network.MsgTypeJoinRoom, message)
}

func rejectionMessage(action uint16, err error) string {
	switch {
	case errors.Is(err, room.ErrNotYourTurn):
		return "It's not your turn!"
	case errors.Is(err, room.ErrMustShootFirst) && action == network.MsgTypeRollDice:
		return "You MUST shoot before rolling again!"
	case errors.Is(err, room.ErrMustShootFirst):
		return "You MUST shoot before ending your turn!"
	case errors.Is(err, room.ErrNoBulletsLoaded):
		return "You don't have 3 bullets loaded right now!"
	case errors.Is(err, room.ErrGameOver):
		return "The game is over!"
	}
	return err.Error()
}
