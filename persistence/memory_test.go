package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wfunc/oddroll/config"
	"github.com/wfunc/oddroll/models"
)

func sampleRecord(room string, ended time.Time, winner string, names ...string) *models.MatchRecord {
	r := &models.MatchRecord{
		RoomKey:    room,
		WinnerName: winner,
		Rolls:      12,
		Shots:      5,
		Turns:      10,
		StartedAt:  ended.Add(-time.Minute),
		EndedAt:    ended,
	}
	for _, n := range names {
		r.Players = append(r.Players, models.PlayerResult{
			PlayerID:      "id-" + n,
			Name:          n,
			ItemTotal:     2,
			DisabledBoxes: []int{1, 3},
			Alive:         n == winner,
			Winner:        n == winner,
		})
	}
	return r
}

func TestMemory_SaveAndLoad(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	rec := sampleRecord("r1", time.Now(), "Alice", "Alice", "Bob")
	if err := db.SaveMatch(ctx, rec); err != nil {
		t.Fatalf("SaveMatch failed: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("Expected SaveMatch to assign an ID")
	}

	loaded, err := db.LoadMatch(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadMatch failed: %v", err)
	}
	if loaded.RoomKey != "r1" || loaded.WinnerName != "Alice" || len(loaded.Players) != 2 {
		t.Errorf("Unexpected record %+v", loaded)
	}

	loaded.Players[0].DisabledBoxes[0] = 9
	again, _ := db.LoadMatch(ctx, rec.ID)
	if again.Players[0].DisabledBoxes[0] != 1 {
		t.Error("Loaded records must not alias the stored copy")
	}

	if _, err := db.LoadMatch(ctx, 999); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemory_RecentMatches(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	base := time.Now()

	db.SaveMatch(ctx, sampleRecord("old", base.Add(-time.Hour), "A", "A", "B"))
	db.SaveMatch(ctx, sampleRecord("new", base, "A", "A", "B"))
	db.SaveMatch(ctx, sampleRecord("mid", base.Add(-time.Minute), "B", "A", "B"))

	recent, err := db.RecentMatches(ctx, 2)
	if err != nil {
		t.Fatalf("RecentMatches failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(recent))
	}
	if recent[0].RoomKey != "new" || recent[1].RoomKey != "mid" {
		t.Errorf("Expected newest first, got %s, %s", recent[0].RoomKey, recent[1].RoomKey)
	}

	all, _ := db.RecentMatches(ctx, 0)
	if len(all) != 3 {
		t.Errorf("Expected all 3 matches with no limit, got %d", len(all))
	}
}

func TestMemory_PlayerStats(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	db.SaveMatch(ctx, sampleRecord("r1", time.Now(), "Alice", "Alice", "Bob"))
	db.SaveMatch(ctx, sampleRecord("r2", time.Now(), "Bob", "Alice", "Bob", "Carol"))

	stats, err := db.PlayerStats(ctx, "Alice")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if stats.TotalGames != 2 || stats.Wins != 1 || stats.Losses != 1 || stats.ItemsCollected != 4 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	none, _ := db.PlayerStats(ctx, "Nobody")
	if none.TotalGames != 0 || none.Name != "Nobody" {
		t.Errorf("Expected empty stats, got %+v", none)
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: config.DriverMemory})
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := db.(*Memory); !ok {
		t.Errorf("Expected *Memory, got %T", db)
	}
	db.Close()

	if _, err := Open(config.DatabaseConfig{Driver: "sqlite"}); !errors.Is(err, config.ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
}
