package state

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/oddroll/logger"
)

// Phase identifies a lifecycle state of a room.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// StateMachine drives a room through its lifecycle. Only registered
// transitions are allowed, so a room can never move backwards.
type StateMachine interface {
	ChangeState(to Phase) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// State is one lifecycle phase.
type State interface {
	OnEnter()
	OnExit()
	GetID() Phase
}

var (
	// ErrTransitionNotAllowed is returned when a transition is not registered or its condition fails.
	ErrTransitionNotAllowed = errors.New("state transition not allowed")
	// ErrUnknownState is returned when the target phase was never registered.
	ErrUnknownState = errors.New("unknown state")
)

// BaseStateMachine is a StateMachine over a fixed set of registered states.
type BaseStateMachine struct {
	currentState State
	states       map[Phase]State
	transitions  map[Phase]map[Phase]func() bool // from -> to -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		states:       map[Phase]State{initialState.GetID(): initialState},
		transitions:  make(map[Phase]map[Phase]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(to Phase) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	newState, ok := sm.states[to]
	if !ok {
		return ErrUnknownState
	}

	conditions, ok := sm.transitions[sm.currentState.GetID()]
	if !ok {
		return ErrTransitionNotAllowed
	}
	condition, ok := conditions[to]
	if !ok {
		return ErrTransitionNotAllowed
	}
	if condition != nil && !condition() {
		return ErrTransitionNotAllowed
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

// AddTransition registers both states and the guarded edge between them.
// A nil condition always allows the transition.
func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()
	sm.states[fromID] = from
	sm.states[toID] = to

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[Phase]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// RoomStateBase carries the room a lifecycle state belongs to.
type RoomStateBase struct {
	ID   Phase
	Room RoomContext
}

func (s *RoomStateBase) GetID() Phase {
	return s.ID
}

func (s *RoomStateBase) OnEnter() {}

func (s *RoomStateBase) OnExit() {}

// WaitingState is the lobby phase: players join, nobody rolls.
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{RoomStateBase: RoomStateBase{ID: PhaseWaiting, Room: room}}
}

// PlayingState is the turn-taking phase.
type PlayingState struct {
	RoomStateBase
	StartedAt time.Time
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{RoomStateBase: RoomStateBase{ID: PhasePlaying, Room: room}}
}

func (s *PlayingState) OnEnter() {
	s.StartedAt = time.Now()
	logger.Log.Infof("room %s entered playing state", s.Room.GetKey())
}

// FinishedState is terminal; the winner has been decided.
type FinishedState struct {
	RoomStateBase
	EndedAt time.Time
}

func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{RoomStateBase: RoomStateBase{ID: PhaseFinished, Room: room}}
}

func (s *FinishedState) OnEnter() {
	s.EndedAt = time.Now()
	logger.Log.Infof("room %s finished", s.Room.GetKey())
}

// Lifecycle is the waiting -> playing -> finished machine of one room.
type Lifecycle struct {
	*BaseStateMachine
	Waiting  *WaitingState
	Playing  *PlayingState
	Finished *FinishedState
}

// NewLifecycle builds a room lifecycle. canStart guards waiting -> playing and
// is evaluated while the caller holds whatever lock protects the room.
func NewLifecycle(room RoomContext, canStart func() bool) *Lifecycle {
	l := &Lifecycle{
		Waiting:  NewWaitingState(room),
		Playing:  NewPlayingState(room),
		Finished: NewFinishedState(room),
	}
	l.BaseStateMachine = NewBaseStateMachine(l.Waiting)
	_ = l.AddTransition(l.Waiting, l.Playing, canStart)
	_ = l.AddTransition(l.Playing, l.Finished, nil)
	return l
}

// Phase returns the current lifecycle phase.
func (l *Lifecycle) Phase() Phase {
	return l.GetCurrentState().GetID()
}
