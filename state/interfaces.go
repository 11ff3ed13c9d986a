// state/interfaces.go
package state

// RoomContext is the view of a room the lifecycle states need.
// This breaks the import cycle between room and state.
type RoomContext interface {
	GetKey() string
}
