package room

import (
	"sort"
	"sync"

	"github.com/wfunc/oddroll/state"
)

// RoomInfo is the listing entry of one room.
type RoomInfo struct {
	Key      string      `json:"key"`
	Players  int         `json:"players"`
	Capacity int         `json:"capacity"`
	Phase    state.Phase `json:"phase"`
}

// Registry owns every live room, keyed by room key. Rooms are created on first
// join and dropped as soon as their last player leaves.
type Registry struct {
	rooms map[string]*GameRoom
	opts  Options
	mutex sync.RWMutex
}

// NewRegistry creates an empty registry; opts applies to every room it creates.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		rooms: make(map[string]*GameRoom),
		opts:  opts,
	}
}

// GetOrCreate returns the room for key, creating it with capacity if unseen.
// An existing room keeps the capacity it was created with.
func (g *Registry) GetOrCreate(key string, capacity int) (*GameRoom, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	room, _, err := g.getOrCreate(key, capacity)
	return room, err
}

// Join resolves the room and seats the player in one step, so a concurrent
// Leave cannot delete the room in between. A room created for a join that
// then fails is discarded.
func (g *Registry) Join(key string, capacity int, playerID, name string) (*GameRoom, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	room, created, err := g.getOrCreate(key, capacity)
	if err != nil {
		return nil, err
	}
	if err := room.Join(playerID, name); err != nil {
		if created {
			delete(g.rooms, key)
		}
		return nil, err
	}
	return room, nil
}

func (g *Registry) getOrCreate(key string, capacity int) (*GameRoom, bool, error) {
	if room, exists := g.rooms[key]; exists {
		return room, false, nil
	}
	room, err := NewGameRoom(key, capacity, g.opts)
	if err != nil {
		return nil, false, err
	}
	g.rooms[key] = room
	return room, true, nil
}

// Leave removes playerID from the room at key and deletes the room once empty.
// It returns the room (nil if unknown) and whether the room was deleted.
func (g *Registry) Leave(key, playerID string) (*GameRoom, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	room, exists := g.rooms[key]
	if !exists {
		return nil, false
	}
	room.RemovePlayer(playerID)
	if room.PlayerCount() == 0 {
		delete(g.rooms, key)
		return room, true
	}
	return room, false
}

// Get returns the room for key.
func (g *Registry) Get(key string) (*GameRoom, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	room, exists := g.rooms[key]
	return room, exists
}

// Remove drops a room regardless of its players.
func (g *Registry) Remove(key string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.rooms, key)
}

func (g *Registry) Count() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.rooms)
}

// List returns every room ordered by key.
func (g *Registry) List() []RoomInfo {
	g.mutex.RLock()
	rooms := make([]*GameRoom, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mutex.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
