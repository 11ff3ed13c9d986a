// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/network"
	"github.com/wfunc/oddroll/room"
	"github.com/wfunc/oddroll/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomKey string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster resolves room members through the registry and delivers
// through their sessions.
type RoomBroadcaster struct {
	registry       *room.Registry
	sessionManager *session.Manager
}

func NewRoomBroadcaster(registry *room.Registry, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry:       registry,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom sends to every player of the room. A failed send to one
// member is logged and does not stop delivery to the others.
func (b *RoomBroadcaster) BroadcastToRoom(roomKey string, msgID uint16, data []byte) error {
	r, exists := b.registry.Get(roomKey)
	if !exists {
		return ErrRoomNotFound
	}

	for _, id := range r.PlayerIDs() {
		s, ok := b.sessionManager.Get(id)
		if !ok {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Warnf("broadcast %s to session %s in room %s failed: %v", network.MsgName(msgID), id, roomKey, err)
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	s, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
