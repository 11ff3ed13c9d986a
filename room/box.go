package room

// BoxNumbers is the fixed, ordered set of faces on the die and boxes on every board.
var BoxNumbers = [...]int{1, 3, 5, 7, 9}

const (
	// MaxBullets is the load at which a box forces its owner to shoot.
	MaxBullets = 3
	// MinPlayers is the smallest table a game can start with.
	MinPlayers = 2
)

// ItemKind is a collectible revealed in a box.
type ItemKind string

const (
	ItemFace     ItemKind = "Face"
	ItemFullBody ItemKind = "FullBody"
)

// DisplayName is the label used in player-facing messages.
func (k ItemKind) DisplayName() string {
	if k == ItemFullBody {
		return "Full Body"
	}
	return string(k)
}

// Box is one numbered compartment of a player's board.
// Bullets follow Stage (0 below 3, then 1, 2, 3) until the gun is fired.
type Box struct {
	Stage    int        `json:"stage"`
	Items    []ItemKind `json:"items"`
	Bullets  int        `json:"bullets"`
	Disabled bool       `json:"disabled"`
}

func (b *Box) hasItem(kind ItemKind) bool {
	for _, item := range b.Items {
		if item == kind {
			return true
		}
	}
	return false
}

// snapshot returns a copy that shares nothing with b.
func (b *Box) snapshot() Box {
	items := make([]ItemKind, len(b.Items))
	copy(items, b.Items)
	return Box{Stage: b.Stage, Items: items, Bullets: b.Bullets, Disabled: b.Disabled}
}

func isBoxNumber(n int) bool {
	for _, number := range BoxNumbers {
		if number == n {
			return true
		}
	}
	return false
}
