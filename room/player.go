package room

import "fmt"

// Player is one connected participant and the board they own.
type Player struct {
	ID        string
	Name      string
	Boxes     map[int]*Box
	Alive     bool
	ItemTotal int
	MustShoot bool
}

// PlayerSummary is the public view of a player shown to everyone in the room.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Alive     bool   `json:"alive"`
	ItemTotal int    `json:"itemTotal"`
}

// PlayerState is a player's full record, boxes included. It is only ever sent to its owner.
type PlayerState struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Alive     bool        `json:"alive"`
	ItemTotal int         `json:"itemTotal"`
	MustShoot bool        `json:"mustShoot"`
	Boxes     map[int]Box `json:"boxes"`
}

// RollResult describes what a roll did to the drawn box.
type RollResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Box         Box    `json:"box"`
	CanShoot    bool   `json:"canShoot"`
	BoxDisabled bool   `json:"boxDisabled"`
}

func newPlayer(id, name string) *Player {
	boxes := make(map[int]*Box, len(BoxNumbers))
	for _, n := range BoxNumbers {
		boxes[n] = &Box{Items: []ItemKind{}}
	}
	return &Player{
		ID:    id,
		Name:  name,
		Boxes: boxes,
		Alive: true,
	}
}

// advanceBox moves box number one stage forward. A disabled box is left untouched.
func (p *Player) advanceBox(number int) RollResult {
	box := p.Boxes[number]
	if box.Disabled {
		return RollResult{
			Message:     fmt.Sprintf("Box %d is disabled! No action taken.", number),
			Box:         box.snapshot(),
			BoxDisabled: true,
		}
	}

	box.Stage++
	result := RollResult{Success: true}

	switch {
	case box.Stage == 1:
		result.Message = p.collect(box, ItemFace, number)
	case box.Stage == 2:
		result.Message = p.collect(box, ItemFullBody, number)
	case box.Stage == 3:
		box.Bullets = 1
		result.Message = fmt.Sprintf("Gun with 1 bullet received in box %d!", number)
	case box.Stage == 4:
		box.Bullets = 2
		result.Message = fmt.Sprintf("Gun upgraded to 2 bullets in box %d!", number)
	default:
		box.Bullets = MaxBullets
		p.MustShoot = true
		result.CanShoot = true
		result.Message = fmt.Sprintf("Gun fully loaded with 3 bullets in box %d! You MUST SHOOT before ending your turn!", number)
	}

	result.Box = box.snapshot()
	return result
}

func (p *Player) collect(box *Box, kind ItemKind, number int) string {
	if box.hasItem(kind) {
		if kind == ItemFace {
			return fmt.Sprintf("Face already present in box %d.", number)
		}
		return fmt.Sprintf("%s already revealed in box %d.", kind.DisplayName(), number)
	}
	box.Items = append(box.Items, kind)
	p.ItemTotal++
	return fmt.Sprintf("%s appeared in box %d!", kind.DisplayName(), number)
}

// loadedBox returns the first box, in BoxNumbers order, holding a full load.
func (p *Player) loadedBox() (int, *Box) {
	for _, n := range BoxNumbers {
		if box := p.Boxes[n]; box.Bullets == MaxBullets {
			return n, box
		}
	}
	return 0, nil
}

// fire empties the loaded gun and releases the must-shoot gate.
func (p *Player) fire() {
	if _, box := p.loadedBox(); box != nil {
		box.Bullets = 0
	}
	p.MustShoot = false
}

func (p *Player) allDisabled() bool {
	for _, box := range p.Boxes {
		if !box.Disabled {
			return false
		}
	}
	return true
}

func (p *Player) disabledBoxes() []int {
	var out []int
	for _, n := range BoxNumbers {
		if p.Boxes[n].Disabled {
			out = append(out, n)
		}
	}
	return out
}

func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{ID: p.ID, Name: p.Name, Alive: p.Alive, ItemTotal: p.ItemTotal}
}

func (p *Player) State() PlayerState {
	boxes := make(map[int]Box, len(p.Boxes))
	for n, box := range p.Boxes {
		boxes[n] = box.snapshot()
	}
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		Alive:     p.Alive,
		ItemTotal: p.ItemTotal,
		MustShoot: p.MustShoot,
		Boxes:     boxes,
	}
}
