package room

import (
	"testing"
)

func expectedBullets(stage int) int {
	switch {
	case stage < 3:
		return 0
	case stage == 3:
		return 1
	case stage == 4:
		return 2
	default:
		return MaxBullets
	}
}

func TestPlayer_NewBoard(t *testing.T) {
	p := newPlayer("p1", "Alice")

	if len(p.Boxes) != len(BoxNumbers) {
		t.Fatalf("Expected %d boxes, got %d", len(BoxNumbers), len(p.Boxes))
	}
	for _, n := range BoxNumbers {
		box, ok := p.Boxes[n]
		if !ok {
			t.Fatalf("Expected box %d to exist", n)
		}
		if box.Stage != 0 || box.Bullets != 0 || box.Disabled || len(box.Items) != 0 {
			t.Errorf("Expected box %d to start empty, got %+v", n, *box)
		}
	}
	if !p.Alive || p.ItemTotal != 0 || p.MustShoot {
		t.Errorf("Expected a fresh alive player, got %+v", p.Summary())
	}
}

func TestPlayer_AdvanceBoxProgression(t *testing.T) {
	p := newPlayer("p1", "Alice")

	steps := []struct {
		message   string
		items     int
		itemTotal int
		mustShoot bool
		canShoot  bool
	}{
		{message: "Face appeared in box 5!", items: 1, itemTotal: 1},
		{message: "Full Body appeared in box 5!", items: 2, itemTotal: 2},
		{message: "Gun with 1 bullet received in box 5!", items: 2, itemTotal: 2},
		{message: "Gun upgraded to 2 bullets in box 5!", items: 2, itemTotal: 2},
		{message: "Gun fully loaded with 3 bullets in box 5! You MUST SHOOT before ending your turn!", items: 2, itemTotal: 2, mustShoot: true, canShoot: true},
		{message: "Gun fully loaded with 3 bullets in box 5! You MUST SHOOT before ending your turn!", items: 2, itemTotal: 2, mustShoot: true, canShoot: true},
	}

	for i, step := range steps {
		stage := i + 1
		result := p.advanceBox(5)
		box := p.Boxes[5]

		if !result.Success {
			t.Fatalf("stage %d: expected success", stage)
		}
		if result.Message != step.message {
			t.Errorf("stage %d: expected message %q, got %q", stage, step.message, result.Message)
		}
		if box.Stage != stage {
			t.Errorf("stage %d: expected box stage %d, got %d", stage, stage, box.Stage)
		}
		if box.Bullets != expectedBullets(stage) {
			t.Errorf("stage %d: expected %d bullets, got %d", stage, expectedBullets(stage), box.Bullets)
		}
		if len(box.Items) != step.items {
			t.Errorf("stage %d: expected %d items, got %v", stage, step.items, box.Items)
		}
		if p.ItemTotal != step.itemTotal {
			t.Errorf("stage %d: expected item total %d, got %d", stage, step.itemTotal, p.ItemTotal)
		}
		if p.MustShoot != step.mustShoot {
			t.Errorf("stage %d: expected mustShoot %v, got %v", stage, step.mustShoot, p.MustShoot)
		}
		if result.CanShoot != step.canShoot {
			t.Errorf("stage %d: expected canShoot %v, got %v", stage, step.canShoot, result.CanShoot)
		}
		if result.Box.Stage != box.Stage {
			t.Errorf("stage %d: result box should mirror the board", stage)
		}
	}
}

func TestPlayer_AdvanceBoxItemsAlreadyPresent(t *testing.T) {
	p := newPlayer("p1", "Alice")
	box := p.Boxes[1]
	box.Items = []ItemKind{ItemFace, ItemFullBody}

	if got := p.advanceBox(1).Message; got != "Face already present in box 1." {
		t.Errorf("Unexpected message: %q", got)
	}
	if got := p.advanceBox(1).Message; got != "Full Body already revealed in box 1." {
		t.Errorf("Unexpected message: %q", got)
	}
	if p.ItemTotal != 0 {
		t.Errorf("Expected item total to stay 0 when items already present, got %d", p.ItemTotal)
	}
}

func TestPlayer_AdvanceDisabledBox(t *testing.T) {
	p := newPlayer("p1", "Alice")
	p.advanceBox(7)
	p.Boxes[7].Disabled = true
	before := p.Boxes[7].snapshot()

	result := p.advanceBox(7)

	if result.Success || !result.BoxDisabled {
		t.Fatalf("Expected a BoxDisabled no-op result, got %+v", result)
	}
	if result.Message != "Box 7 is disabled! No action taken." {
		t.Errorf("Unexpected message: %q", result.Message)
	}
	after := p.Boxes[7]
	if after.Stage != before.Stage || after.Bullets != before.Bullets || len(after.Items) != len(before.Items) {
		t.Errorf("Disabled box changed: before %+v, after %+v", before, *after)
	}
	if p.ItemTotal != 1 {
		t.Errorf("Expected item total 1, got %d", p.ItemTotal)
	}
}

func TestPlayer_FireAndReload(t *testing.T) {
	p := newPlayer("p1", "Alice")
	for i := 0; i < 5; i++ {
		p.advanceBox(9)
	}
	if n, box := p.loadedBox(); n != 9 || box == nil {
		t.Fatalf("Expected box 9 to be loaded, got %d", n)
	}

	p.fire()

	if p.MustShoot {
		t.Error("Expected fire to clear mustShoot")
	}
	if p.Boxes[9].Bullets != 0 {
		t.Errorf("Expected bullets reset to 0 after firing, got %d", p.Boxes[9].Bullets)
	}
	if p.Boxes[9].Stage != 5 {
		t.Errorf("Expected stage to survive firing, got %d", p.Boxes[9].Stage)
	}

	p.advanceBox(9)
	if p.Boxes[9].Bullets != MaxBullets || !p.MustShoot {
		t.Errorf("Expected reload to 3 bullets and mustShoot, got %d bullets, mustShoot %v", p.Boxes[9].Bullets, p.MustShoot)
	}
}

func TestPlayer_StateIsACopy(t *testing.T) {
	p := newPlayer("p1", "Alice")
	p.advanceBox(3)

	st := p.State()
	b := st.Boxes[3]
	b.Items[0] = ItemFullBody
	b.Stage = 99

	if p.Boxes[3].Stage != 1 || p.Boxes[3].Items[0] != ItemFace {
		t.Error("Mutating a PlayerState must not touch the board")
	}
}
