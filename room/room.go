// room/room.go
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/oddroll/dice"
	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/state"
)

// Options configures rooms created by a Registry.
type Options struct {
	// Dice draws the rolled box. Nil selects a crypto-seeded source shared by all rooms.
	Dice dice.Source
	// MaxCapacity caps the capacity of new rooms. Zero means no cap.
	MaxCapacity int
}

var defaultDice = sync.OnceValue(func() dice.Source {
	src, err := dice.NewSeededSource()
	if err != nil {
		logger.Log.Warnf("crypto seed unavailable, falling back to time seed: %v", err)
		return dice.NewSource(time.Now().UnixNano())
	}
	return src
})

// RollOutcome is the result of a successful roll request.
type RollOutcome struct {
	PlayerID     string      `json:"playerId"`
	PlayerName   string      `json:"playerName"`
	RolledNumber int         `json:"rolledNumber"`
	Result       RollResult  `json:"result"`
	Player       PlayerState `json:"currentPlayerState"`
}

// ShootOutcome is the result of a successful shot.
type ShootOutcome struct {
	ShooterID   string          `json:"shooterId"`
	TargetID    string          `json:"targetId"`
	TargetName  string          `json:"targetName"`
	DisabledBox int             `json:"disabledBox"`
	Message     string          `json:"message"`
	Eliminated  bool            `json:"eliminated"`
	Players     []PlayerSummary `json:"updatedPlayers"`
	// Winner is set when the shot left a single player alive.
	Winner *PlayerSummary `json:"-"`
	// Match is set when this call moved the room into the finished phase.
	Match *MatchSummary `json:"-"`
}

// TurnOutcome is the result of a turn advance: either the next player or the end of the game.
type TurnOutcome struct {
	Next     *PlayerSummary
	Players  []PlayerSummary
	GameOver bool
	Winner   *PlayerSummary
	Match    *MatchSummary
}

// GameState is what a player sees when asking for the current state.
type GameState struct {
	Players       []PlayerSummary `json:"players"`
	CurrentPlayer *PlayerSummary  `json:"currentPlayer"`
	MyState       *PlayerState    `json:"myState"`
}

// PlayerResult is one line of a finished match.
type PlayerResult struct {
	ID            string
	Name          string
	ItemTotal     int
	DisabledBoxes []int
	Alive         bool
	Winner        bool
}

// MatchSummary describes a finished game.
type MatchSummary struct {
	RoomKey   string
	Winner    *PlayerSummary
	Players   []PlayerResult
	Rolls     int
	Shots     int
	Turns     int
	StartedAt time.Time
	EndedAt   time.Time
}

// GameRoom is one isolated game. Every exported method holds the room lock for
// its whole body, so each action applies atomically with respect to the others.
type GameRoom struct {
	Key       string
	Capacity  int
	CreatedAt time.Time

	mu         sync.Mutex
	players    map[string]*Player
	order      []string // join order
	turnCursor int
	lifecycle  *state.Lifecycle
	winner     *Player
	dice       dice.Source
	rolls      int
	shots      int
	turns      int
}

// NewGameRoom creates an empty room in the waiting phase.
func NewGameRoom(key string, capacity int, opts Options) (*GameRoom, error) {
	if key == "" {
		return nil, ErrInvalidRoomKey
	}
	if capacity < MinPlayers || (opts.MaxCapacity > 0 && capacity > opts.MaxCapacity) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	r := &GameRoom{
		Key:       key,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		players:   make(map[string]*Player),
		dice:      opts.Dice,
	}
	if r.dice == nil {
		r.dice = defaultDice()
	}
	// The guard runs inside Start, which already holds r.mu.
	r.lifecycle = state.NewLifecycle(r, func() bool { return len(r.order) >= MinPlayers })
	return r, nil
}

// --- state.RoomContext ---

func (r *GameRoom) GetKey() string {
	return r.Key
}

// --- lifecycle ---

// Join seats a new player with a fresh board at the end of the turn order.
func (r *GameRoom) Join(playerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[playerID]; exists {
		return ErrAlreadyJoined
	}
	if len(r.players) >= r.Capacity {
		return ErrRoomFull
	}

	r.players[playerID] = newPlayer(playerID, name)
	r.order = append(r.order, playerID)
	return nil
}

// RemovePlayer drops a player from the room. The turn cursor is left as is.
func (r *GameRoom) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[playerID]; !exists {
		return false
	}
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Start moves the room from waiting to playing.
func (r *GameRoom) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lifecycle.Phase() != state.PhaseWaiting {
		return ErrAlreadyStarted
	}
	if err := r.lifecycle.ChangeState(state.PhasePlaying); err != nil {
		return ErrNotEnoughPlayers
	}
	return nil
}

func (r *GameRoom) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.Phase() != state.PhaseWaiting
}

func (r *GameRoom) Phase() state.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.Phase()
}

// --- turn state ---

// CurrentPlayer returns whose turn it is; false means no player is alive.
func (r *GameRoom) CurrentPlayer() (PlayerSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.currentPlayer()
	if p == nil {
		return PlayerSummary{}, false
	}
	return p.Summary(), true
}

// Roll draws a box for the current player and advances it.
func (r *GameRoom) Roll(playerID string) (RollOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkPlaying(); err != nil {
		return RollOutcome{}, err
	}
	current := r.currentPlayer()
	if current == nil || current.ID != playerID {
		return RollOutcome{}, ErrNotYourTurn
	}
	if current.MustShoot {
		return RollOutcome{}, ErrMustShootFirst
	}

	number := BoxNumbers[r.dice.Intn(len(BoxNumbers))]
	result := current.advanceBox(number)
	r.rolls++

	return RollOutcome{
		PlayerID:     current.ID,
		PlayerName:   current.Name,
		RolledNumber: number,
		Result:       result,
		Player:       current.State(),
	}, nil
}

// Shoot spends the shooter's full load to disable one box of the target.
// A target left with no working box is eliminated, then the win check runs.
func (r *GameRoom) Shoot(shooterID, targetID string, boxNumber int) (ShootOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkPlaying(); err != nil {
		return ShootOutcome{}, err
	}
	shooter, ok := r.players[shooterID]
	if !ok || !shooter.Alive || !shooter.MustShoot {
		return ShootOutcome{}, ErrNoBulletsLoaded
	}
	target, ok := r.players[targetID]
	if !ok || !target.Alive || target.ID == shooter.ID {
		return ShootOutcome{}, ErrInvalidTarget
	}
	box, ok := target.Boxes[boxNumber]
	if !ok {
		return ShootOutcome{}, fmt.Errorf("%w: no box %d", ErrInvalidTarget, boxNumber)
	}
	if box.Disabled {
		return ShootOutcome{}, fmt.Errorf("%w: box %d is already disabled", ErrInvalidTarget, boxNumber)
	}

	shooter.fire()
	box.Disabled = true
	r.shots++

	out := ShootOutcome{
		ShooterID:   shooter.ID,
		TargetID:    target.ID,
		TargetName:  target.Name,
		DisabledBox: boxNumber,
		Message:     fmt.Sprintf("%s's box %d has been disabled!", target.Name, boxNumber),
	}
	if target.allDisabled() {
		target.Alive = false
		out.Eliminated = true
		out.Message += fmt.Sprintf(" %s has been eliminated!", target.Name)
	}

	if winner := r.checkWinner(); winner != nil {
		summary := winner.Summary()
		out.Winner = &summary
		match := r.matchSummary()
		out.Match = &match
	}
	out.Players = r.playerList()
	return out, nil
}

// AdvanceTurn passes the turn on. With at most one player alive it freezes the
// winner and reports the end of the game instead. Only the current player may advance.
func (r *GameRoom) AdvanceTurn(playerID string) (TurnOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	phase := r.lifecycle.Phase()
	if phase == state.PhaseWaiting {
		return TurnOutcome{}, ErrNotStarted
	}
	player, ok := r.players[playerID]
	if !ok {
		return TurnOutcome{}, ErrPlayerNotFound
	}
	if player.MustShoot {
		return TurnOutcome{}, ErrMustShootFirst
	}
	if phase == state.PhaseFinished {
		return r.gameOver(nil), nil
	}

	alive := r.alivePlayers()
	if len(alive) <= 1 {
		if r.winner == nil && len(alive) == 1 {
			r.winner = alive[0]
		}
		r.finish()
		match := r.matchSummary()
		return r.gameOver(&match), nil
	}
	if r.currentPlayer() != player {
		return TurnOutcome{}, ErrNotYourTurn
	}

	r.turnCursor++
	r.turns++
	next := r.currentPlayer().Summary()
	r.checkWinner()

	return TurnOutcome{Next: &next, Players: r.playerList()}, nil
}

// CheckWinner freezes and returns the winner once exactly one player is alive.
func (r *GameRoom) CheckWinner() (PlayerSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lifecycle.Phase() == state.PhaseWaiting {
		return PlayerSummary{}, false
	}
	w := r.checkWinner()
	if w == nil {
		return PlayerSummary{}, false
	}
	return w.Summary(), true
}

// Winner returns the frozen winner, if any.
func (r *GameRoom) Winner() (PlayerSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.winner == nil {
		return PlayerSummary{}, false
	}
	return r.winner.Summary(), true
}

// --- views ---

// Players returns the public summaries in join order.
func (r *GameRoom) Players() []PlayerSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerList()
}

func (r *GameRoom) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *GameRoom) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// PlayerState returns the full record of one player.
func (r *GameRoom) PlayerState(playerID string) (PlayerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return PlayerState{}, false
	}
	return p.State(), true
}

// Snapshot returns the room as seen by playerID.
func (r *GameRoom) Snapshot(playerID string) GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	gs := GameState{Players: r.playerList()}
	if current := r.currentPlayer(); current != nil {
		summary := current.Summary()
		gs.CurrentPlayer = &summary
	}
	if p, ok := r.players[playerID]; ok {
		mine := p.State()
		gs.MyState = &mine
	}
	return gs
}

func (r *GameRoom) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomInfo{
		Key:      r.Key,
		Players:  len(r.players),
		Capacity: r.Capacity,
		Phase:    r.lifecycle.Phase(),
	}
}

// --- internals, r.mu held ---

func (r *GameRoom) checkPlaying() error {
	switch r.lifecycle.Phase() {
	case state.PhaseWaiting:
		return ErrNotStarted
	case state.PhaseFinished:
		return ErrGameOver
	}
	return nil
}

func (r *GameRoom) alivePlayers() []*Player {
	alive := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (r *GameRoom) currentPlayer() *Player {
	alive := r.alivePlayers()
	if len(alive) == 0 {
		return nil
	}
	return alive[r.turnCursor%len(alive)]
}

func (r *GameRoom) checkWinner() *Player {
	if r.winner != nil {
		return r.winner
	}
	alive := r.alivePlayers()
	if len(alive) != 1 {
		return nil
	}
	r.winner = alive[0]
	r.finish()
	return r.winner
}

func (r *GameRoom) finish() {
	if r.lifecycle.Phase() != state.PhasePlaying {
		return
	}
	if err := r.lifecycle.ChangeState(state.PhaseFinished); err != nil {
		logger.Log.Errorf("room %s: finish: %v", r.Key, err)
	}
}

func (r *GameRoom) gameOver(match *MatchSummary) TurnOutcome {
	out := TurnOutcome{GameOver: true, Players: r.playerList(), Match: match}
	if r.winner != nil {
		summary := r.winner.Summary()
		out.Winner = &summary
	}
	return out
}

func (r *GameRoom) playerList() []PlayerSummary {
	list := make([]PlayerSummary, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id].Summary())
	}
	return list
}

func (r *GameRoom) matchSummary() MatchSummary {
	m := MatchSummary{
		RoomKey:   r.Key,
		Rolls:     r.rolls,
		Shots:     r.shots,
		Turns:     r.turns,
		StartedAt: r.lifecycle.Playing.StartedAt,
		EndedAt:   r.lifecycle.Finished.EndedAt,
	}
	if r.winner != nil {
		summary := r.winner.Summary()
		m.Winner = &summary
	}
	for _, id := range r.order {
		p := r.players[id]
		m.Players = append(m.Players, PlayerResult{
			ID:            p.ID,
			Name:          p.Name,
			ItemTotal:     p.ItemTotal,
			DisabledBoxes: p.disabledBoxes(),
			Alive:         p.Alive,
			Winner:        r.winner == p,
		})
	}
	return m
}
